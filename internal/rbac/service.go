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
	"fmt"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/audit"
)

// GrantInput is one requested grant in a role create or update.
type GrantInput struct {
	Resource string      `json:"resource"`
	Access   AccessLevel `json:"access"`
}

// Service manages the role and permission catalog.
type Service struct {
	roles       RoleRepository
	permissions PermissionRepository
	auditLogger audit.Logger
}

// NewService creates a new rbac service
func NewService(roles RoleRepository, permissions PermissionRepository, auditLogger audit.Logger) *Service {
	return &Service{
		roles:       roles,
		permissions: permissions,
		auditLogger: auditLogger,
	}
}

// CreateRole creates a role with the given grants. Every referenced
// resource must exist in the permission catalog and every mask must be a
// valid capability combination.
func (s *Service) CreateRole(ctx context.Context, actorID, name string, grants []GrantInput) (*Role, error) {
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, ErrRoleNameTaken
	}

	resolved, err := s.resolveGrants(ctx, grants)
	if err != nil {
		return nil, err
	}

	role := &Role{
		ID:     uuid.NewString(),
		Name:   name,
		Grants: resolved,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleCreated,
		Realm:    "admin",
		ActorID:  actorID,
		Resource: "roles",
		Metadata: map[string]any{"role": name},
	})

	return role, nil
}

// GetRole returns a role with its grants.
func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.roles.GetByID(ctx, id)
}

// ListRoles returns all roles with their grants.
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roles.List(ctx)
}

// UpdateRole renames the role and replaces its entire grant set. The swap
// is atomic: readers observe either the old set or the new one, never a
// partially applied mix.
func (s *Service) UpdateRole(ctx context.Context, actorID, id, name string, grants []GrantInput) (*Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if other, err := s.roles.GetByName(ctx, name); err == nil && other.ID != id {
		return nil, ErrRoleNameTaken
	}

	resolved, err := s.resolveGrants(ctx, grants)
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Grants = resolved
	if err := s.roles.Replace(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleUpdated,
		Realm:    "admin",
		ActorID:  actorID,
		Resource: "roles",
		Metadata: map[string]any{"role": name},
	})

	return role, nil
}

// DeleteRole removes a role and all its grants. The reserved super-admin
// role cannot be deleted, and neither can a role admins still hold.
func (s *Service) DeleteRole(ctx context.Context, actorID, id string) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if IsSuperAdmin(role.Name) {
		return ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleDeleted,
		Realm:    "admin",
		ActorID:  actorID,
		Resource: "roles",
		Metadata: map[string]any{"role": role.Name},
	})

	return nil
}

// ListPermissions returns the protected-resource catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return s.permissions.List(ctx)
}

// EnsurePermission registers a resource in the catalog if it is not
// already present. Used by startup seeding.
func (s *Service) EnsurePermission(ctx context.Context, name string) (*Permission, error) {
	p, err := s.permissions.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPermissionNotFound) {
		return nil, err
	}

	p = &Permission{ID: uuid.NewString(), Name: name}
	if err := s.permissions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return p, nil
}

func (s *Service) resolveGrants(ctx context.Context, grants []GrantInput) ([]Grant, error) {
	resolved := make([]Grant, 0, len(grants))
	seen := make(map[string]bool, len(grants))
	for _, g := range grants {
		if !g.Access.Valid() {
			return nil, fmt.Errorf("%w: %d on %s", ErrInvalidAccessLevel, g.Access, g.Resource)
		}
		if seen[g.Resource] {
			return nil, fmt.Errorf("duplicate grant for resource %s", g.Resource)
		}
		seen[g.Resource] = true

		p, err := s.permissions.GetByName(ctx, g.Resource)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, g.Resource)
		}
		resolved = append(resolved, Grant{
			PermissionID:   p.ID,
			PermissionName: p.Name,
			Access:         g.Access,
		})
	}
	return resolved, nil
}
