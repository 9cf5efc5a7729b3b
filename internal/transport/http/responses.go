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
	"errors"
	"net/http"

	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/content"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/rbac"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps known domain errors to HTTP statuses. Anything
// unmapped becomes a 500 with a generic message.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrWrongPurpose):
		respondError(w, http.StatusUnauthorized, "token not valid for this operation")
	case errors.Is(err, auth.ErrInvalidOTP):
		respondError(w, http.StatusBadRequest, "invalid reset code")
	case errors.Is(err, auth.ErrExpiredOTP):
		respondError(w, http.StatusBadRequest, "reset code expired")
	case errors.Is(err, auth.ErrProviderEmailMissing):
		respondError(w, http.StatusUnauthorized, "provider did not supply an email address")
	case errors.Is(err, identity.ErrAdminNotFound),
		errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, rbac.ErrRoleNotFound),
		errors.Is(err, content.ErrStoryNotFound),
		errors.Is(err, content.ErrHighlightNotFound),
		errors.Is(err, content.ErrCountryNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rbac.ErrRoleInUse):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrEmailTaken),
		errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, rbac.ErrRoleNameTaken),
		errors.Is(err, content.ErrCountryTaken),
		errors.Is(err, content.ErrHighlightExists),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrSamePassword),
		errors.Is(err, rbac.ErrInvalidAccessLevel),
		errors.Is(err, rbac.ErrPermissionNotFound),
		errors.Is(err, content.ErrNotACoach):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrAdminInactive):
		respondError(w, http.StatusForbidden, "account is inactive")
	case errors.Is(err, rbac.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
