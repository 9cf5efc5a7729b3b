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

// Package upload stores user-submitted media on local disk under
// server-generated names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/config"
)

var (
	ErrTooLarge        = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotFound        = errors.New("file not found")
)

// allowedExtensions are the media types accepted for profile images and
// story uploads.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".mp4":  true,
}

// Store writes uploads to a directory on local disk.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed and returns a store.
func NewStore(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: cfg.Dir, maxSize: cfg.MaxSizeBytes}, nil
}

// Save writes the upload under a random server-generated name, keeping only
// the original extension. The client-supplied filename never reaches the
// filesystem, so it cannot traverse out of the upload directory. Returns
// the stored name.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if n > s.maxSize {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return name, nil
}

// Open returns a reader for a stored file. Names holding path separators or
// dot segments are rejected before touching the filesystem.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *Store) Remove(name string) error {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
