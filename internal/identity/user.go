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
	"time"
)

// Domain errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrSamePassword  = errors.New("new password must be different from current password")
	ErrWrongPassword = errors.New("current password is incorrect")
)

// User roles
const (
	RoleTrainee = "TRAINEE"
	RoleCoach   = "COACH"
)

// User statuses
const (
	StatusActive         = "ACTIVE"
	StatusPendingProfile = "PENDING_PROFILE"
)

// Federated login providers
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User is an end-user principal. PasswordHash is nil for accounts created
// through federated login that never set a local password.
type User struct {
	ID                 string
	Name               string
	Username           *string
	Email              string
	Phone              *string
	PasswordHash       *string
	Role               string
	Status             string
	GoogleID           *string
	FacebookID         *string
	ResetCode          *string
	ResetCodeExpiresAt *time.Time
	RefreshTokenHash   *string
	ProfileImage       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// UserProfile is the public-safe projection of a User.
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     *string   `json:"username,omitempty"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile returns the public-safe projection.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Status:       u.Status,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserListParams controls user listing. Search matches name or email.
type UserListParams struct {
	Search    string
	Role      string
	Page      int
	Limit     int
	SortField string
	SortDesc  bool
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user row.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID (excluding soft-deleted rows).
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByExternalID retrieves a user by federated provider identity.
	GetByExternalID(ctx context.Context, provider, externalID string) (*User, error)

	// LinkExternalID attaches a federated identity to an existing user.
	LinkExternalID(ctx context.Context, id, provider, externalID string) error

	// List returns a page of users plus the total count.
	List(ctx context.Context, params UserListParams) ([]*User, int, error)

	// Update updates mutable profile fields.
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetCode stores a one-time password-reset code with its expiry.
	SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error

	// ClearResetCode removes any stored reset code.
	ClearResetCode(ctx context.Context, id string) error

	// SetRefreshTokenHash stores the current refresh-token hash; nil revokes
	// all sessions for the user.
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error

	// Delete soft-deletes a user and clears its refresh-token hash.
	Delete(ctx context.Context, id string) error
}
