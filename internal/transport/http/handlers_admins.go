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
	"github.com/pulsefit/pulsefit/internal/identity"
)

// CreateAdminRequest represents admin provisioning data
type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   string `json:"role_id"`
}

// CreateAdmin provisions a new console admin.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.RoleID == "" {
		respondError(w, http.StatusBadRequest, "name, email, password and role_id are required")
		return
	}

	admin, err := h.admins.Create(r.Context(), identity.CreateAdminParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, admin.Profile())
}

// GetAdminByID returns one admin.
func (h *Handler) GetAdminByID(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.Get(r.Context(), chi.URLParam(r, "adminID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, admin.Profile())
}

// ListAdmins returns a page of admins.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	params := identity.AdminListParams{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	admins, total, err := h.admins.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	profiles := make([]identity.AdminProfile, 0, len(admins))
	for _, a := range admins {
		profiles = append(profiles, a.Profile())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"admins": profiles,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// UpdateAdminRequest represents admin update data
type UpdateAdminRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	RoleID *string `json:"role_id,omitempty"`
}

// UpdateAdmin updates an admin's profile and role.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admin, err := h.admins.Update(r.Context(), chi.URLParam(r, "adminID"), identity.UpdateAdminParams{
		Name:   req.Name,
		Email:  req.Email,
		RoleID: req.RoleID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, admin.Profile())
}

// ActivateAdmin re-enables a deactivated admin.
func (h *Handler) ActivateAdmin(w http.ResponseWriter, r *http.Request) {
	h.setAdminActive(w, r, true)
}

// DeactivateAdmin disables an admin and revokes its sessions.
func (h *Handler) DeactivateAdmin(w http.ResponseWriter, r *http.Request) {
	h.setAdminActive(w, r, false)
}

func (h *Handler) setAdminActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "adminID")

	// Admins cannot deactivate themselves.
	if actor := GetAdmin(r.Context()); !active && actor != nil && actor.ID == id {
		respondError(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}

	if err := h.admins.SetActive(r.Context(), id, active); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

// DeleteAdmin soft-deletes an admin.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "adminID")

	if actor := GetAdmin(r.Context()); actor != nil && actor.ID == id {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.admins.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AdminChangePassword changes the authenticated admin's own password.
func (h *Handler) AdminChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}

	admin := GetAdmin(r.Context())
	if admin == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.admins.ChangePassword(r.Context(), admin.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
