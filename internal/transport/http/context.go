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

	"github.com/pulsefit/pulsefit/internal/auth"
	"github.com/pulsefit/pulsefit/internal/identity"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	realmKey  contextKey = "realm"
	adminKey  contextKey = "admin"
)

// GetClaims retrieves the verified token claims from context.
func GetClaims(ctx context.Context) *auth.Claims {
	if val, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return val
	}
	return nil
}

// GetRealm retrieves the request realm from context.
func GetRealm(ctx context.Context) auth.Realm {
	if val, ok := ctx.Value(realmKey).(auth.Realm); ok {
		return val
	}
	return auth.RealmUser
}

// GetAdmin retrieves the re-fetched admin row from context. Only present on
// admin-realm requests that passed the account-state guard.
func GetAdmin(ctx context.Context) *identity.Admin {
	if val, ok := ctx.Value(adminKey).(*identity.Admin); ok {
		return val
	}
	return nil
}
