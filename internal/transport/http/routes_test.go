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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/rbac"
)

// =============================================================================
// ROUTE GATING TESTS
// Category: Router - Guard Placement per Endpoint
// Type: Integration Test (IT) over the mounted router
// =============================================================================

// seedRouterAdmin registers an active admin and returns a real access token
// for it, so requests exercise the full Authenticate/guard/authorize chain.
func seedRouterAdmin(t *testing.T, h *securityHandler, roleID, roleName string) string {
	t.Helper()
	h.adminRepo.admins["admin-1"] = &identity.Admin{
		ID:       "admin-1",
		IsActive: true,
		RoleID:   roleID,
		RoleName: roleName,
	}
	token, err := h.tokens.Issue(auth.Claims{
		Role:             roleName,
		RegisteredClaims: jwtRegistered("admin-1"),
	}, auth.RealmAdmin, auth.TokenAccess)
	require.NoError(t, err)
	return token
}

// TestPurpose: Validates that app settings are reachable only through the
// super-admin role; a full grant bitmask on any resource must not open them.
// Scope: Integration Test
// Security: Maintenance mode is a realm-membership decision, not a grant
// Expected: Returns HTTP 403 Forbidden and settings stay untouched.
// Test Case ID: RTE-01
func TestRouter_Settings_FullGrantsWithoutSuperAdmin_Forbidden(t *testing.T) {
	h := newSecurityHandler(t)
	h.grants.grants["role-ops/settings"] = rbac.AccessFull
	token := seedRouterAdmin(t, h, "role-ops", "ops")

	router := NewRouter(h.Handler, NewRateLimiter(100, 100))

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/",
		strings.NewReader(`{"maintenance_mode":true}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code,
		"RTE-01: Settings must reject non-super-admin roles regardless of grants")
	assert.False(t, h.settingsRepo.settings.MaintenanceMode,
		"RTE-01: Maintenance mode must not have been toggled")
}

// TestPurpose: Validates that the super-admin role can update app settings
// through the mounted router.
// Scope: Integration Test
// Expected: Returns HTTP 200 and the settings row is updated.
// Test Case ID: RTE-02
func TestRouter_Settings_SuperAdmin_Allowed(t *testing.T) {
	h := newSecurityHandler(t)
	token := seedRouterAdmin(t, h, "role-sa", rbac.SuperAdminRole)

	router := NewRouter(h.Handler, NewRateLimiter(100, 100))

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/",
		strings.NewReader(`{"maintenance_mode":true,"maintenance_message":"back soon"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code,
		"RTE-02: Super-admin should be able to update settings")
	assert.True(t, h.settingsRepo.settings.MaintenanceMode)
}

// TestPurpose: Validates that role management is opened by a grant on the
// "roles" resource; the super-admin role is not required to read roles.
// Scope: Integration Test
// Expected: Returns HTTP 200 for a role holding roles:READ.
// Test Case ID: RTE-03
func TestRouter_Roles_GrantOnRolesResource_Allowed(t *testing.T) {
	h := newSecurityHandler(t)
	h.grants.grants["role-support/"+ResourceRoles] = rbac.AccessRead
	token := seedRouterAdmin(t, h, "role-support", "support")

	router := NewRouter(h.Handler, NewRateLimiter(100, 100))

	req := httptest.NewRequest(http.MethodGet, "/admin/roles/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code,
		"RTE-03: A roles:READ grant should open role listing")
}

// TestPurpose: Validates that an admin without a grant on the "roles"
// resource is denied role management.
// Scope: Integration Test
// Security: Least-privilege enforcement at the route level
// Expected: Returns HTTP 403 Forbidden.
// Test Case ID: RTE-04
func TestRouter_Roles_NoGrant_Forbidden(t *testing.T) {
	h := newSecurityHandler(t)
	h.grants.grants["role-support/"+ResourceUsers] = rbac.AccessFull
	token := seedRouterAdmin(t, h, "role-support", "support")

	router := NewRouter(h.Handler, NewRateLimiter(100, 100))

	req := httptest.NewRequest(http.MethodGet, "/admin/roles/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code,
		"RTE-04: No grant on roles should deny role listing")
}

// Minimal rbac repositories for router wiring; role-management behavior has
// its own service tests.
type stubRoleRepo struct{}

func (s *stubRoleRepo) Create(_ context.Context, _ *rbac.Role) error { return nil }
func (s *stubRoleRepo) GetByID(_ context.Context, _ string) (*rbac.Role, error) {
	return nil, rbac.ErrRoleNotFound
}
func (s *stubRoleRepo) GetByName(_ context.Context, _ string) (*rbac.Role, error) {
	return nil, rbac.ErrRoleNotFound
}
func (s *stubRoleRepo) List(_ context.Context) ([]*rbac.Role, error)  { return nil, nil }
func (s *stubRoleRepo) Replace(_ context.Context, _ *rbac.Role) error { return nil }
func (s *stubRoleRepo) Delete(_ context.Context, _ string) error      { return nil }

type stubPermissionRepo struct{}

func (s *stubPermissionRepo) Create(_ context.Context, _ *rbac.Permission) error { return nil }
func (s *stubPermissionRepo) GetByName(_ context.Context, _ string) (*rbac.Permission, error) {
	return nil, rbac.ErrPermissionNotFound
}
func (s *stubPermissionRepo) List(_ context.Context) ([]*rbac.Permission, error) { return nil, nil }
