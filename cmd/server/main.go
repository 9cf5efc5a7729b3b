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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/config"
	"github.com/pulsefit/pulsefit/internal/content"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/mailer"
	"github.com/pulsefit/pulsefit/internal/observability/logger"
	"github.com/pulsefit/pulsefit/internal/observability/metrics"
	"github.com/pulsefit/pulsefit/internal/observability/tracing"
	"github.com/pulsefit/pulsefit/internal/payment"
	"github.com/pulsefit/pulsefit/internal/rbac"
	"github.com/pulsefit/pulsefit/internal/store/postgres"
	transportHTTP "github.com/pulsefit/pulsefit/internal/transport/http"
	"github.com/pulsefit/pulsefit/internal/upload"
	"github.com/pulsefit/pulsefit/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(logger.Options{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting pulsefit backend")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrations.Up(cfg.Database); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	adminRepo := postgres.NewAdminRepository(db)
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	permissionRepo := postgres.NewPermissionRepository(db)
	grantStore := postgres.NewGrantStore(db)
	storyRepo := postgres.NewStoryRepository(db)
	highlightRepo := postgres.NewHighlightRepository(db)
	countryRepo := postgres.NewCountryRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		slog.Error("failed to initialize token service", logger.Error(err))
		os.Exit(1)
	}

	var mail mailer.Mailer
	if cfg.Mail.Host != "" {
		mail, err = mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			slog.Error("failed to initialize mailer", logger.Error(err))
			os.Exit(1)
		}
	} else {
		slog.Warn("SMTP_HOST not set, outbound mail is logged only")
		mail = mailer.NewLogMailer(slog.Default())
	}

	uploads, err := upload.NewStore(cfg.Upload)
	if err != nil {
		slog.Error("failed to initialize upload store", logger.Error(err))
		os.Exit(1)
	}

	// Initialize services
	authService := auth.NewService(adminRepo, userRepo, tokens, mail, cfg.Mail.ResetTemplate, auditLogger)
	adminsService := identity.NewAdminsService(adminRepo, auditLogger)
	usersService := identity.NewUsersService(userRepo, mail, auditLogger)
	rbacService := rbac.NewService(roleRepo, permissionRepo, auditLogger)
	evaluator := rbac.NewEvaluator(grantStore, slog.Default())
	contentService := content.NewService(storyRepo, highlightRepo, countryRepo, settingsRepo, userRepo, slog.Default(), auditLogger)
	payments := payment.NewClient(cfg.Paymob)
	providers := auth.NewProviderVerifier(cfg.OAuth)

	// Seed the permission catalog, the super-admin role, and the initial
	// super admin account (ENV driven).
	if err := seed(ctx, rbacService, roleRepo, adminRepo, adminsService); err != nil {
		slog.Error("seeding failed", logger.Error(err))
		os.Exit(1)
	}

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		authService,
		tokens,
		adminsService,
		usersService,
		rbacService,
		evaluator,
		contentService,
		payments,
		uploads,
		providers,
		auditLogger,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start expired-story purge goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := contentService.PurgeExpiredStories(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to purge expired stories", logger.Error(err))
			}
		}
	}()

	// Start server
	go func() {
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// protectedResources is the permission catalog seeded at startup. Route
// guards reference these names.
var protectedResources = []string{
	transportHTTP.ResourceAdmins,
	transportHTTP.ResourceUsers,
	transportHTTP.ResourceRoles,
	transportHTTP.ResourceStories,
	transportHTTP.ResourceCountries,
}

// seed makes the catalog, the super-admin role, and the first super admin
// account exist. Idempotent: reruns on every start.
func seed(
	ctx context.Context,
	rbacService *rbac.Service,
	roleRepo rbac.RoleRepository,
	adminRepo identity.AdminRepository,
	adminsService *identity.AdminsService,
) error {
	for _, resource := range protectedResources {
		if _, err := rbacService.EnsurePermission(ctx, resource); err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", resource, err)
		}
	}

	superRole, err := roleRepo.GetByName(ctx, rbac.SuperAdminRole)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		grants := make([]rbac.GrantInput, 0, len(protectedResources))
		for _, resource := range protectedResources {
			grants = append(grants, rbac.GrantInput{Resource: resource, Access: rbac.AccessFull})
		}
		superRole, err = rbacService.CreateRole(ctx, "system", rbac.SuperAdminRole, grants)
	}
	if err != nil {
		return fmt.Errorf("failed to seed super-admin role: %w", err)
	}

	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	_, err = adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, identity.ErrAdminNotFound) {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	admin, err := adminsService.Create(ctx, identity.CreateAdminParams{
		Name:     "Super Admin",
		Email:    email,
		Password: password,
		RoleID:   superRole.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	slog.Info("created bootstrap super admin", logger.Email(admin.Email))
	return nil
}
