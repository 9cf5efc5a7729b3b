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
	"log/slog"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/crypto"
	"github.com/pulsefit/pulsefit/internal/mailer"
	"github.com/pulsefit/pulsefit/internal/observability/logger"
)

// UsersService provides end-user account management.
type UsersService struct {
	repo        UserRepository
	mail        mailer.Mailer
	auditLogger audit.Logger
}

// NewUsersService creates a new users service
func NewUsersService(repo UserRepository, mail mailer.Mailer, auditLogger audit.Logger) *UsersService {
	return &UsersService{repo: repo, mail: mail, auditLogger: auditLogger}
}

// SignUpParams holds the fields for local account registration.
type SignUpParams struct {
	Name     string
	Username *string
	Email    string
	Phone    *string
	Password string
	Role     string
}

// SignUp registers a new end-user with a hashed password. Email and username
// are unique across all users.
func (s *UsersService) SignUp(ctx context.Context, params SignUpParams) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if params.Username != nil {
		taken, err := s.repo.GetByUsername(ctx, *params.Username)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken != nil {
			return nil, ErrUsernameTaken
		}
	}

	hash, err := crypto.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := params.Role
	if role == "" {
		role = RoleTrainee
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Username:     params.Username,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: &hash,
		Role:         role,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSignUp,
		Realm:    "user",
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{"email": user.Email},
	})

	// Welcome mail is best effort; a mail outage must not block sign-up.
	if err := s.mail.Send(ctx, user.Email, mailer.TemplateWelcome, map[string]any{
		"Name": user.Name,
	}); err != nil {
		slog.WarnContext(ctx, "failed to send welcome mail",
			logger.Email(user.Email),
			logger.Error(err),
		)
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of users plus the total count.
func (s *UsersService) List(ctx context.Context, params UserListParams) ([]*User, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}
	if params.SortField == "" {
		params.SortField = "created_at"
		params.SortDesc = true
	}
	return s.repo.List(ctx, params)
}

// UpdateUserParams holds the mutable profile fields. Nil fields are unchanged.
type UpdateUserParams struct {
	Name         *string
	Username     *string
	Phone        *string
	ProfileImage *string
}

// Update modifies a user's profile. Username changes are checked for
// uniqueness against other users.
func (s *UsersService) Update(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		taken, err := s.repo.GetByUsername(ctx, *params.Username)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken != nil && taken.ID != id {
			return nil, ErrUsernameTaken
		}
		user.Username = params.Username
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Phone != nil {
		user.Phone = params.Phone
	}
	if params.ProfileImage != nil {
		user.ProfileImage = params.ProfileImage
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// CompleteProfile fills in the fields a federated sign-up leaves empty and
// activates the account.
func (s *UsersService) CompleteProfile(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	user, err := s.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if user.Status == StatusPendingProfile {
		user.Status = StatusActive
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to activate user: %w", err)
		}
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
// Accounts without a local password (federated only) cannot change one.
func (s *UsersService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil {
		return ErrWrongPassword
	}

	if !crypto.VerifyPassword(currentPassword, *user.PasswordHash) {
		return ErrWrongPassword
	}
	if crypto.VerifyPassword(newPassword, *user.PasswordHash) {
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
		Realm:    "user",
		ActorID:  id,
		Resource: "user",
	})
	return nil
}

// Deactivate revokes all sessions by clearing the refresh-token hash. The
// account itself is kept.
func (s *UsersService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetRefreshTokenHash(ctx, id, nil)
}

// Delete soft-deletes a user. The repository clears the refresh-token hash
// in the same statement.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		Realm:    "user",
		ActorID:  id,
		Resource: "user",
	})
	return nil
}
