// Copyright 2026 The PulseFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit/internal/upload"
)

// Upload accepts a multipart file and stores it under a server-generated
// name.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "file exceeds size limit")
		case errors.Is(err, upload.ErrUnsupportedType):
			respondError(w, http.StatusBadRequest, "unsupported file type")
		default:
			respondError(w, http.StatusInternalServerError, "failed to store file")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"name": name,
		"url":  "/uploads/" + name,
	})
}

// ServeUpload streams a stored file back to the client.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.uploads.Open(name)
	if err != nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	io.Copy(w, f)
}
