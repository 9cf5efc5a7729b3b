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
	"errors"
	"time"
)

// SuperAdminRole is the reserved role name that bypasses grant evaluation.
const SuperAdminRole = "super-admin"

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNameTaken      = errors.New("role name already taken")
	ErrRoleInUse          = errors.New("role is assigned to admins")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrInvalidAccessLevel = errors.New("invalid access level")
	ErrForbidden          = errors.New("forbidden")
)

// Permission is a protected resource surface, e.g. "users" or "roles".
type Permission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Grant is one resource capability attached to a role.
type Grant struct {
	PermissionID   string      `json:"permission_id"`
	PermissionName string      `json:"permission_name"`
	Access         AccessLevel `json:"access"`
}

// Role is a named bundle of grants assignable to admins.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grants    []Grant   `json:"grants"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleRepository persists roles and their grants.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	// Replace renames the role and swaps its full grant set atomically.
	Replace(ctx context.Context, role *Role) error
	// Delete removes the role and its grants; fails if admins still hold it.
	Delete(ctx context.Context, id string) error
}

// PermissionRepository persists the protected-resource catalog.
type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	GetByName(ctx context.Context, name string) (*Permission, error)
	List(ctx context.Context) ([]*Permission, error)
}

// GrantStore answers the single question evaluation needs: the stored
// access mask for one (role, resource) pair.
type GrantStore interface {
	// GrantFor returns the mask, or ErrPermissionNotFound when the role
	// holds no grant on the resource.
	GrantFor(ctx context.Context, roleID, resource string) (AccessLevel, error)
}
