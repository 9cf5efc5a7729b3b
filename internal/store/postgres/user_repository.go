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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulsefit/pulsefit/internal/identity"
)

// UserRepository implements identity.UserRepository on PostgreSQL.
type UserRepository struct {
	db Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, username, email, phone, password_hash, role, status,
	google_id, facebook_id, reset_code, reset_code_expires_at, refresh_token_hash,
	profile_image, created_at, updated_at, deleted_at`

// userSortFields whitelists sortable columns; anything else falls back to
// created_at.
var userSortFields = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status,
		&u.GoogleID, &u.FacebookID, &u.ResetCode, &u.ResetCodeExpiresAt, &u.RefreshTokenHash,
		&u.ProfileImage, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	query := `
		INSERT INTO users (id, name, username, email, phone, password_hash, role, status,
			google_id, facebook_id, profile_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Username, user.Email, user.Phone, user.PasswordHash,
		user.Role, user.Status, user.GoogleID, user.FacebookID, user.ProfileImage)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueUserError(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// uniqueUserError maps a unique violation to the column that collided.
// Postgres reports the index name, e.g. users_email_key or users_username_key.
func uniqueUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "email") {
		return identity.ErrEmailTaken
	}
	return identity.ErrUsernameTaken
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) GetByExternalID(ctx context.Context, provider, externalID string) (*identity.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRow(ctx, query, externalID))
}

func (r *UserRepository) LinkExternalID(ctx context.Context, id, provider, externalID string) error {
	column, err := providerColumn(provider)
	if err != nil {
		return err
	}
	query := `UPDATE users SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, externalID)
	if err != nil {
		return fmt.Errorf("failed to link external id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, params identity.UserListParams) ([]*identity.User, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM users
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR role = $2)`
	if err := r.db.QueryRow(ctx, countQuery, params.Search, params.Role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	sortColumn, ok := userSortFields[params.SortField]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR role = $2)
		ORDER BY ` + sortColumn + ` ` + direction + `
		LIMIT $3 OFFSET $4`

	offset := (params.Page - 1) * params.Limit
	rows, err := r.db.Query(ctx, query, params.Search, params.Role, params.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	query := `
		UPDATE users
		SET name = $2, username = $3, phone = $4, role = $5, status = $6,
			profile_image = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Username, user.Phone, user.Role, user.Status, user.ProfileImage)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueUserError(err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_code = $2, reset_code_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetCode(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET reset_code = NULL, reset_code_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("failed to set refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), refresh_token_hash = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case identity.ProviderGoogle:
		return "google_id", nil
	case identity.ProviderFacebook:
		return "facebook_id", nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}
