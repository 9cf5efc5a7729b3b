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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit/internal/content"
)

// PublishStoryRequest represents story publishing data
type PublishStoryRequest struct {
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption,omitempty"`
}

// PublishStory publishes a story for the authenticated coach.
func (h *Handler) PublishStory(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PublishStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MediaURL == "" {
		respondError(w, http.StatusBadRequest, "media_url is required")
		return
	}

	story, err := h.contentService.PublishStory(r.Context(), claims.PrincipalID(), req.MediaURL, req.Caption)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, story)
}

// ListStories returns all unexpired stories.
func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.contentService.ListStories(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

// ListCoachStories returns a coach's unexpired stories.
func (h *Handler) ListCoachStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.contentService.ListCoachStories(r.Context(), chi.URLParam(r, "coachID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

// RecordStoryView counts one view of a story.
func (h *Handler) RecordStoryView(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.RecordStoryView(r.Context(), chi.URLParam(r, "storyID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}

// DeleteOwnStory deletes a story owned by the authenticated coach.
func (h *Handler) DeleteOwnStory(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.contentService.DeleteStory(r.Context(), claims.PrincipalID(), chi.URLParam(r, "storyID"), false); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteStory deletes any story from the admin console.
func (h *Handler) AdminDeleteStory(w http.ResponseWriter, r *http.Request) {
	actor := GetAdmin(r.Context())
	if err := h.contentService.DeleteStory(r.Context(), actor.ID, chi.URLParam(r, "storyID"), true); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateHighlightRequest represents highlight creation data
type CreateHighlightRequest struct {
	Title string `json:"title"`
}

// CreateHighlight pins one of the authenticated coach's stories as a
// highlight.
func (h *Handler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateHighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	highlight, err := h.contentService.CreateHighlight(r.Context(), claims.PrincipalID(), chi.URLParam(r, "storyID"), req.Title)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, highlight)
}

// ListHighlights returns a page of highlights, optionally filtered to one
// coach via the coach_id query parameter.
func (h *Handler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	highlights, err := h.contentService.ListHighlights(r.Context(), r.URL.Query().Get("coach_id"), page, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, highlights)
}

// ListCoachHighlights returns a page of one coach's highlights.
func (h *Handler) ListCoachHighlights(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	highlights, err := h.contentService.ListHighlights(r.Context(), chi.URLParam(r, "coachID"), page, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, highlights)
}

// DeleteOwnHighlight unpins a highlight owned by the authenticated coach.
func (h *Handler) DeleteOwnHighlight(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.contentService.DeleteHighlight(r.Context(), claims.PrincipalID(), chi.URLParam(r, "highlightID"), false); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteHighlight unpins any highlight from the admin console.
func (h *Handler) AdminDeleteHighlight(w http.ResponseWriter, r *http.Request) {
	actor := GetAdmin(r.Context())
	if err := h.contentService.DeleteHighlight(r.Context(), actor.ID, chi.URLParam(r, "highlightID"), true); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageParams reads page and limit query parameters; the service clamps
// out-of-range values.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

// CountryRequest represents country create/update data
type CountryRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dial_code"`
}

// CreateCountry adds a country to the catalog.
func (h *Handler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var req CountryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	country, err := h.contentService.CreateCountry(r.Context(), req.Name, req.Code, req.DialCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, country)
}

// ListCountries returns the country catalog.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.contentService.ListCountries(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"countries": countries})
}

// UpdateCountry updates a catalog entry.
func (h *Handler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	var req CountryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	country, err := h.contentService.UpdateCountry(r.Context(), chi.URLParam(r, "countryID"), req.Name, req.Code, req.DialCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, country)
}

// DeleteCountry removes a catalog entry.
func (h *Handler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.DeleteCountry(r.Context(), chi.URLParam(r, "countryID")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns the global settings row.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.contentService.GetSettings(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the global settings row.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req content.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := GetAdmin(r.Context())
	settings, err := h.contentService.UpdateSettings(r.Context(), actor.ID, &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
