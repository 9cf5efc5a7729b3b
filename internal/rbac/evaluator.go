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

package rbac

import (
	"context"
	"log/slog"
)

// Evaluator answers authorization questions for the admin realm.
type Evaluator struct {
	grants GrantStore
	logger *slog.Logger
}

// NewEvaluator creates an evaluator backed by the given grant store.
func NewEvaluator(grants GrantStore, logger *slog.Logger) *Evaluator {
	return &Evaluator{grants: grants, logger: logger}
}

// Authorize grants access iff the role's stored mask on the resource covers
// every required bit. No grant row means deny. Any store error also means
// deny: evaluation fails closed, never open.
func (e *Evaluator) Authorize(ctx context.Context, roleID, resource string, required AccessLevel) error {
	stored, err := e.grants.GrantFor(ctx, roleID, resource)
	if err != nil {
		e.logger.DebugContext(ctx, "authorization denied",
			slog.String("role_id", roleID),
			slog.String("resource", resource),
			slog.String("required", required.String()),
			slog.String("error", err.Error()),
		)
		return ErrForbidden
	}
	if !stored.HasAll(required) {
		return ErrForbidden
	}
	return nil
}

// IsSuperAdmin reports whether the role name is the reserved super-admin
// role. The check is by name, not by grant bits: a role holding full access
// on every resource is still not a super-admin.
func IsSuperAdmin(roleName string) bool {
	return roleName == SuperAdminRole
}
