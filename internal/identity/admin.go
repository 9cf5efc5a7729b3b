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
	ErrAdminNotFound = errors.New("admin not found")
	ErrEmailTaken    = errors.New("email already exists")
	ErrAdminInactive = errors.New("admin account is inactive")
)

// Admin is a console principal. Admins always belong to exactly one role;
// their permissions are derived from that role's resource bindings.
type Admin struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	IsActive         bool
	RoleID           string
	RoleName         string
	RefreshTokenHash *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// AdminProfile is the public-safe projection of an Admin. It never carries
// the password or refresh-token hashes.
type AdminProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	RoleName  string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the public-safe projection.
func (a *Admin) Profile() AdminProfile {
	return AdminProfile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		IsActive:  a.IsActive,
		RoleName:  a.RoleName,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AdminListParams controls admin listing.
type AdminListParams struct {
	Search string
	Page   int
	Limit  int
}

// AdminRepository defines the interface for admin persistence
type AdminRepository interface {
	// Create inserts a new admin row.
	Create(ctx context.Context, admin *Admin) error

	// GetByID retrieves an admin by ID (excluding soft-deleted rows).
	GetByID(ctx context.Context, id string) (*Admin, error)

	// GetByEmail retrieves an admin by email.
	GetByEmail(ctx context.Context, email string) (*Admin, error)

	// List returns a page of admins plus the total count.
	List(ctx context.Context, params AdminListParams) ([]*Admin, int, error)

	// Update updates name, email and role.
	Update(ctx context.Context, admin *Admin) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetActive toggles the active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// SetRefreshTokenHash stores the current refresh-token hash; nil revokes
	// all sessions for the admin.
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error

	// Delete soft-deletes an admin and clears its refresh-token hash.
	Delete(ctx context.Context, id string) error
}
