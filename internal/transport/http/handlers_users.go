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

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit/internal/identity"
)

// GetOwnProfile returns the authenticated user's profile.
func (h *Handler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.Get(r.Context(), claims.PrincipalID())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	Username     *string `json:"username,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// UpdateOwnProfile updates the authenticated user's profile.
func (h *Handler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), claims.PrincipalID(), identity.UpdateUserParams{
		Name:         req.Name,
		Username:     req.Username,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// CompleteProfile finishes a federated signup: the account moves from
// PENDING_PROFILE to ACTIVE once the missing fields are filled in.
func (h *Handler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.CompleteProfile(r.Context(), claims.PrincipalID(), identity.UpdateUserParams{
		Name:         req.Name,
		Username:     req.Username,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// UserChangePassword changes the authenticated user's own password.
func (h *Handler) UserChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}

	if err := h.users.ChangePassword(r.Context(), claims.PrincipalID(), req.CurrentPassword, req.NewPassword); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// ListUsers returns a page of users for the admin console.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := identity.UserListParams{
		Search:    r.URL.Query().Get("search"),
		Role:      r.URL.Query().Get("role"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
		SortField: r.URL.Query().Get("sort"),
		SortDesc:  r.URL.Query().Get("order") != "asc",
	}

	users, total, err := h.users.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	profiles := make([]identity.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"users": profiles,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	})
}

// GetUserByID returns one user for the admin console.
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// AdminUpdateUser updates any user's profile from the admin console.
func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), identity.UpdateUserParams{
		Name:         req.Name,
		Username:     req.Username,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// DeactivateUser revokes all of a user's sessions. The account itself
// stays; the user is locked out once their access token expires.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Deactivate(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// DeleteUser soft-deletes a user.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
