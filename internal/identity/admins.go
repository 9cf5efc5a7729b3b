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

package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/crypto"
)

// AdminsService provides console-admin management.
type AdminsService struct {
	repo        AdminRepository
	auditLogger audit.Logger
}

// NewAdminsService creates a new admins service
func NewAdminsService(repo AdminRepository, auditLogger audit.Logger) *AdminsService {
	return &AdminsService{repo: repo, auditLogger: auditLogger}
}

// CreateAdminParams holds the fields for creating an admin.
type CreateAdminParams struct {
	Name     string
	Email    string
	Password string
	RoleID   string
}

// Create provisions a new admin account with a hashed password.
func (s *AdminsService) Create(ctx context.Context, params CreateAdminParams) (*Admin, error) {
	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrAdminNotFound) {
		return nil, fmt.Errorf("failed to check admin email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &Admin{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       params.RoleID,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdminCreated,
		Realm:    "admin",
		ActorID:  admin.ID,
		Resource: "admin",
		Metadata: map[string]any{"email": admin.Email},
	})

	return admin, nil
}

// Get retrieves an admin by ID.
func (s *AdminsService) Get(ctx context.Context, id string) (*Admin, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of admins plus the total count.
func (s *AdminsService) List(ctx context.Context, params AdminListParams) ([]*Admin, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}
	return s.repo.List(ctx, params)
}

// UpdateAdminParams holds the mutable admin fields. Nil fields are unchanged.
type UpdateAdminParams struct {
	Name   *string
	Email  *string
	RoleID *string
}

// Update updates an existing admin's profile and role.
func (s *AdminsService) Update(ctx context.Context, id string, params UpdateAdminParams) (*Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil && *params.Email != admin.Email {
		existing, err := s.repo.GetByEmail(ctx, *params.Email)
		if err != nil && !errors.Is(err, ErrAdminNotFound) {
			return nil, fmt.Errorf("failed to check admin email: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		admin.Email = *params.Email
	}
	if params.Name != nil {
		admin.Name = *params.Name
	}
	if params.RoleID != nil {
		admin.RoleID = *params.RoleID
	}

	if err := s.repo.Update(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to update admin: %w", err)
	}
	return admin, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AdminsService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !crypto.VerifyPassword(currentPassword, admin.PasswordHash) {
		return ErrWrongPassword
	}
	if crypto.VerifyPassword(newPassword, admin.PasswordHash) {
		return ErrSamePassword
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordChanged,
		Realm:    "admin",
		ActorID:  id,
		Resource: "admin",
	})
	return nil
}

// SetActive toggles the active flag. Deactivation also clears the stored
// refresh-token hash so outstanding sessions cannot be renewed.
func (s *AdminsService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	if !active {
		if err := s.repo.SetRefreshTokenHash(ctx, id, nil); err != nil {
			return err
		}
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAdminDeactivated,
			Realm:    "admin",
			ActorID:  id,
			Resource: "admin",
		})
	}
	return nil
}

// Delete soft-deletes an admin. The repository clears the refresh-token hash
// in the same statement.
func (s *AdminsService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
