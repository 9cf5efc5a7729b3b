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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/observability/logger"
	"github.com/pulsefit/pulsefit/internal/rbac"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Authenticate verifies the bearer token against the realm derived from the
// request path. The realm decides which secret verifies the signature, and
// the realm comes ONLY from the URL: a token's own claims never influence
// which secret is tried, so a user token can never be verified as an admin
// token no matter what it asserts about itself.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		realm := auth.ResolveRealm(r.URL.Path)

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.tokens.Verify(token, realm, auth.TokenAccess)
		if err != nil {
			respondDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, realmKey, realm)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountStateGuard re-checks the live account behind an admin token on
// every request: a row that vanished or was deactivated since the token was
// minted ends the session here, before any handler runs. On the user realm
// the guard deliberately passes every request through untouched; user
// deactivation takes effect at the next token refresh, not mid-session.
func (h *Handler) AccountStateGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRealm(r.Context()) != auth.RealmAdmin {
			next.ServeHTTP(w, r)
			return
		}

		claims := GetClaims(r.Context())
		if claims == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		admin, err := h.admins.Get(r.Context(), claims.PrincipalID())
		if err != nil {
			// A vanished row is a revoked account, not a bad credential.
			if errors.Is(err, identity.ErrAdminNotFound) {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !admin.IsActive {
			respondError(w, http.StatusForbidden, "account is inactive")
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission authorizes the admin's role against a resource and
// required access mask. The reserved super-admin role bypasses evaluation;
// every other role is checked against its stored grants and denied on any
// lookup failure.
func (h *Handler) RequirePermission(resource string, required rbac.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := GetAdmin(r.Context())
			if admin == nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if rbac.IsSuperAdmin(admin.RoleName) {
				next.ServeHTTP(w, r)
				return
			}

			if err := h.evaluator.Authorize(r.Context(), admin.RoleID, resource, required); err != nil {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin restricts a route to the reserved super-admin role.
func (h *Handler) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin := GetAdmin(r.Context())
		if admin == nil || !rbac.IsSuperAdmin(admin.RoleName) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaintenanceGate returns 503 on the user realm while maintenance mode is
// on. The admin realm stays reachable so someone can turn it back off.
func (h *Handler) MaintenanceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.ResolveRealm(r.URL.Path) == auth.RealmAdmin {
			next.ServeHTTP(w, r)
			return
		}

		settings, err := h.contentService.GetSettings(r.Context())
		if err == nil && settings.MaintenanceMode {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error":   "platform is under maintenance",
				"message": settings.MaintenanceMessage,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
