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
	"github.com/pulsefit/pulsefit/internal/rbac"
)

// RoleRequest represents role create/update data
type RoleRequest struct {
	Name   string            `json:"name"`
	Grants []rbac.GrantInput `json:"grants"`
}

// CreateRole creates a role with its grants.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	actor := GetAdmin(r.Context())
	role, err := h.rbacService.CreateRole(r.Context(), actor.ID, req.Name, req.Grants)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

// GetRole returns one role with its grants.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.rbacService.GetRole(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

// ListRoles returns all roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.rbacService.ListRoles(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// UpdateRole renames a role and replaces its grant set.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	actor := GetAdmin(r.Context())
	role, err := h.rbacService.UpdateRole(r.Context(), actor.ID, chi.URLParam(r, "roleID"), req.Name, req.Grants)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

// DeleteRole removes a role and its grants.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	actor := GetAdmin(r.Context())
	if err := h.rbacService.DeleteRole(r.Context(), actor.ID, chi.URLParam(r, "roleID")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPermissions returns the protected-resource catalog.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.rbacService.ListPermissions(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"permissions": perms})
}
