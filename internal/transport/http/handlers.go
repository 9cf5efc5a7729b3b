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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/content"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/payment"
	"github.com/pulsefit/pulsefit/internal/rbac"
	"github.com/pulsefit/pulsefit/internal/upload"
)

// Protected resources registered in the permission catalog. Admin routes
// are guarded by grants on these names. App settings are absent on purpose:
// they are reachable only through the super-admin role, never a grant.
const (
	ResourceAdmins    = "admins"
	ResourceUsers     = "users"
	ResourceRoles     = "roles"
	ResourceStories   = "stories"
	ResourceCountries = "countries"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	authService    *auth.Service
	tokens         *auth.TokenService
	admins         *identity.AdminsService
	users          *identity.UsersService
	rbacService    *rbac.Service
	evaluator      *rbac.Evaluator
	contentService *content.Service
	payments       *payment.Client
	uploads        *upload.Store
	providers      auth.ProviderVerifier
	auditLogger    audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *auth.Service,
	tokens *auth.TokenService,
	admins *identity.AdminsService,
	users *identity.UsersService,
	rbacService *rbac.Service,
	evaluator *rbac.Evaluator,
	contentService *content.Service,
	payments *payment.Client,
	uploads *upload.Store,
	providers auth.ProviderVerifier,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		authService:    authService,
		tokens:         tokens,
		admins:         admins,
		users:          users,
		rbacService:    rbacService,
		evaluator:      evaluator,
		contentService: contentService,
		payments:       payments,
		uploads:        uploads,
		providers:      providers,
		auditLogger:    auditLogger,
	}
}

// NewRouter creates a new HTTP router. Admin-realm routes live strictly
// under /admin; everything else is the user realm.
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(h.MaintenanceGate)

	r.Get("/health", h.HealthCheck)

	// User realm
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.UserLogin)
		r.Post("/refresh", h.Refresh)
		r.Post("/forgot-password", h.RequestReset)
		r.Post("/verify-reset-code", h.VerifyResetCode)
		r.Post("/reset-password", h.CompleteReset)
		r.Post("/oauth/{provider}", h.OAuthLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.AccountStateGuard)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Use(h.AccountStateGuard)
		r.Get("/me", h.GetOwnProfile)
		r.Put("/me", h.UpdateOwnProfile)
		r.Post("/me/complete-profile", h.CompleteProfile)
		r.Post("/me/change-password", h.UserChangePassword)
	})

	r.Route("/stories", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Use(h.AccountStateGuard)
		r.Get("/", h.ListStories)
		r.Post("/", h.PublishStory)
		r.Get("/coach/{coachID}", h.ListCoachStories)
		r.Get("/highlights", h.ListHighlights)
		r.Get("/highlights/coach/{coachID}", h.ListCoachHighlights)
		r.Delete("/highlights/{highlightID}", h.DeleteOwnHighlight)
		r.Post("/{storyID}/view", h.RecordStoryView)
		r.Post("/{storyID}/highlight", h.CreateHighlight)
		r.Delete("/{storyID}", h.DeleteOwnStory)
	})

	r.Get("/countries", h.ListCountries)

	r.Route("/uploads", func(r chi.Router) {
		r.Get("/{name}", h.ServeUpload)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.AccountStateGuard)
			r.Post("/", h.Upload)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		// Gateway callbacks authenticate by HMAC, not bearer token.
		r.Post("/paymob/callback", h.PaymobCallback)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.AccountStateGuard)
			r.Post("/link", h.CreatePaymentLink)
		})
	})

	// Admin realm
	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth/login", h.AdminLogin)
		r.Post("/auth/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.AccountStateGuard)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)
			r.Post("/auth/change-password", h.AdminChangePassword)

			r.Route("/admins", func(r chi.Router) {
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessRead)).Get("/", h.ListAdmins)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessRead)).Get("/{adminID}", h.GetAdminByID)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessWrite)).Post("/", h.CreateAdmin)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessWrite)).Put("/{adminID}", h.UpdateAdmin)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessWrite)).Post("/{adminID}/activate", h.ActivateAdmin)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessWrite)).Post("/{adminID}/deactivate", h.DeactivateAdmin)
				r.With(h.RequirePermission(ResourceAdmins, rbac.AccessDelete)).Delete("/{adminID}", h.DeleteAdmin)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(h.RequirePermission(ResourceUsers, rbac.AccessRead)).Get("/", h.ListUsers)
				r.With(h.RequirePermission(ResourceUsers, rbac.AccessRead)).Get("/{userID}", h.GetUserByID)
				r.With(h.RequirePermission(ResourceUsers, rbac.AccessWrite)).Put("/{userID}", h.AdminUpdateUser)
				r.With(h.RequirePermission(ResourceUsers, rbac.AccessWrite)).Post("/{userID}/deactivate", h.DeactivateUser)
				r.With(h.RequirePermission(ResourceUsers, rbac.AccessDelete)).Delete("/{userID}", h.DeleteUser)
			})

			r.Route("/roles", func(r chi.Router) {
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessRead)).Get("/", h.ListRoles)
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessRead)).Get("/{roleID}", h.GetRole)
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessWrite)).Post("/", h.CreateRole)
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessWrite)).Put("/{roleID}", h.UpdateRole)
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessDelete)).Delete("/{roleID}", h.DeleteRole)
				r.With(h.RequirePermission(ResourceRoles, rbac.AccessRead)).Get("/permissions/catalog", h.ListPermissions)
			})

			r.Route("/stories", func(r chi.Router) {
				r.With(h.RequirePermission(ResourceStories, rbac.AccessRead)).Get("/", h.ListStories)
				r.With(h.RequirePermission(ResourceStories, rbac.AccessRead)).Get("/highlights", h.ListHighlights)
				r.With(h.RequirePermission(ResourceStories, rbac.AccessDelete)).Delete("/highlights/{highlightID}", h.AdminDeleteHighlight)
				r.With(h.RequirePermission(ResourceStories, rbac.AccessDelete)).Delete("/{storyID}", h.AdminDeleteStory)
			})

			r.Route("/countries", func(r chi.Router) {
				r.With(h.RequirePermission(ResourceCountries, rbac.AccessRead)).Get("/", h.ListCountries)
				r.With(h.RequirePermission(ResourceCountries, rbac.AccessWrite)).Post("/", h.CreateCountry)
				r.With(h.RequirePermission(ResourceCountries, rbac.AccessWrite)).Put("/{countryID}", h.UpdateCountry)
				r.With(h.RequirePermission(ResourceCountries, rbac.AccessDelete)).Delete("/{countryID}", h.DeleteCountry)
			})

			// App-wide settings bypass the grant bitmask entirely: only the
			// super-admin role may read or flip them.
			r.Route("/settings", func(r chi.Router) {
				r.Use(h.RequireSuperAdmin)
				r.Get("/", h.GetSettings)
				r.Put("/", h.UpdateSettings)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pulsefit",
	})
}
