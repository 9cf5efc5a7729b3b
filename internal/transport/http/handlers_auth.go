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
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/observability/logger"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLogin authenticates an end-user and returns a token pair.
func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RealmUser)
}

// AdminLogin authenticates a console admin and returns a token pair.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RealmAdmin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, realm auth.Realm) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	principal, pair, err := h.authService.Login(r.Context(), realm, req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if realm == auth.RealmAdmin && !principal.IsActive {
		respondError(w, http.StatusForbidden, "account is inactive")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(h.tokens.TTL(realm, auth.TokenAccess).Seconds()),
		"principal":     principal,
	})
}

// SignUpRequest represents registration data
type SignUpRequest struct {
	Name     string  `json:"name"`
	Username *string `json:"username,omitempty"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password"`
	Role     string  `json:"role,omitempty"`
}

// SignUp registers a new end-user account and logs it in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := h.users.SignUp(r.Context(), identity.SignUpParams{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to sign up user",
			logger.Error(err),
			logger.Email(req.Email),
		)
		respondDomainError(w, err)
		return
	}

	_, pair, err := h.authService.Login(r.Context(), auth.RealmUser, req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":          user.Profile(),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(h.tokens.TTL(auth.RealmUser, auth.TokenAccess).Seconds()),
	})
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token into a new token pair. The realm comes
// from the URL path, so /admin/auth/refresh and /auth/refresh exchange
// against different secrets.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	realm := auth.ResolveRealm(r.URL.Path)
	pair, err := h.authService.Refresh(r.Context(), realm, req.RefreshToken)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(h.tokens.TTL(realm, auth.TokenAccess).Seconds()),
	})
}

// Logout revokes every session of the authenticated principal.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), GetRealm(r.Context()), claims.PrincipalID()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated principal's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if GetRealm(r.Context()) == auth.RealmAdmin {
		admin := GetAdmin(r.Context())
		if admin == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		respondJSON(w, http.StatusOK, admin.Profile())
		return
	}

	user, err := h.users.Get(r.Context(), claims.PrincipalID())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

// ResetRequest starts the password reset flow.
type ResetRequest struct {
	Email string `json:"email"`
}

// RequestReset emails a one-time reset code to the account.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.authService.RequestReset(r.Context(), req.Email); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset code sent"})
}

// VerifyResetCodeRequest exchanges an emailed code for a reset token.
type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyResetCode checks the emailed code and returns a short-lived reset
// token.
func (h *Handler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyResetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	token, err := h.authService.VerifyResetCode(r.Context(), req.Email, req.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reset_token": token})
}

// CompleteResetRequest sets the new password.
type CompleteResetRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// CompleteReset sets a new password in exchange for a valid reset token.
func (h *Handler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req CompleteResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResetToken == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "reset_token and new_password are required")
		return
	}

	if err := h.authService.CompleteReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// OAuthLoginRequest carries the provider-issued token.
type OAuthLoginRequest struct {
	Token string `json:"token"`
}

// OAuthLogin verifies a provider token server-side and logs the asserted
// identity in, creating or linking a local account as needed.
func (h *Handler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req OAuthLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	profile, err := h.providers.Verify(r.Context(), provider, req.Token)
	if err != nil {
		slog.WarnContext(r.Context(), "provider token verification failed",
			logger.Provider(provider),
			logger.Error(err),
		)
		respondDomainError(w, err)
		return
	}

	principal, pair, isNew, err := h.authService.FederatedLogin(r.Context(), profile)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    int(h.tokens.TTL(auth.RealmUser, auth.TokenAccess).Seconds()),
		"principal":     principal,
		"is_new_user":   isNew,
	})
}
