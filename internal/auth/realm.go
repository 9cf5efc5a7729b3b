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

package auth

import "strings"

// Realm identifies which of the two disjoint authentication domains governs a
// request. Each realm has its own account store and token secrets.
type Realm string

const (
	RealmAdmin Realm = "admin"
	RealmUser  Realm = "user"
)

// ResolveRealm maps a request path to its realm: a first path segment of
// literally "admin" selects the admin realm, anything else the user realm.
//
// This is the only place realm resolution happens. The realm must come from
// the routing prefix, never from token claims: the secret used to verify a
// token is chosen by realm BEFORE the token is parsed, so claims are not yet
// available, and trusting them would let a token pick its own secret.
// Every admin-scoped route must therefore be mounted under /admin/... .
func ResolveRealm(requestPath string) Realm {
	trimmed := strings.TrimPrefix(requestPath, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	if segment == "admin" {
		return RealmAdmin
	}
	return RealmUser
}
