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

// Package rbac implements role-based access control over bitmask
// permission grants.
package rbac

// AccessLevel is a bitmask of capabilities on one resource.
type AccessLevel int

const (
	AccessRead   AccessLevel = 1 << iota // 1
	AccessWrite                          // 2
	AccessDelete                         // 4

	// AccessFull is every capability combined.
	AccessFull = AccessRead | AccessWrite | AccessDelete
)

// HasAll reports whether the stored grant covers every bit the request
// requires. A request for READ|WRITE against a READ-only grant fails; extra
// stored bits never hurt.
func (a AccessLevel) HasAll(required AccessLevel) bool {
	return a&required == required
}

// Valid reports whether the level is a non-empty combination of defined
// capability bits.
func (a AccessLevel) Valid() bool {
	return a > 0 && a|AccessFull == AccessFull
}

// String renders the mask as a capability list, e.g. "READ|WRITE".
func (a AccessLevel) String() string {
	if a == 0 {
		return "NONE"
	}
	var s string
	if a&AccessRead != 0 {
		s = "READ"
	}
	if a&AccessWrite != 0 {
		if s != "" {
			s += "|"
		}
		s += "WRITE"
	}
	if a&AccessDelete != 0 {
		if s != "" {
			s += "|"
		}
		s += "DELETE"
	}
	return s
}
