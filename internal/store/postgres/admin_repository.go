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

	"github.com/jackc/pgx/v5"

	"github.com/pulsefit/pulsefit/internal/identity"
)

// AdminRepository implements identity.AdminRepository on PostgreSQL.
type AdminRepository struct {
	db Pool
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `a.id, a.name, a.email, a.password_hash, a.is_active, a.role_id, r.name,
	a.refresh_token_hash, a.created_at, a.updated_at, a.deleted_at`

func scanAdmin(row pgx.Row) (*identity.Admin, error) {
	var a identity.Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsActive, &a.RoleID, &a.RoleName,
		&a.RefreshTokenHash, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *identity.Admin) error {
	query := `
		INSERT INTO admins (id, name, email, password_hash, is_active, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := r.db.Exec(ctx, query,
		admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.IsActive, admin.RoleID)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrEmailTaken
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*identity.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins a
		JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1 AND a.deleted_at IS NULL`

	return scanAdmin(r.db.QueryRow(ctx, query, id))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*identity.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1 AND a.deleted_at IS NULL`

	return scanAdmin(r.db.QueryRow(ctx, query, email))
}

func (r *AdminRepository) List(ctx context.Context, params identity.AdminListParams) ([]*identity.Admin, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM admins a
		WHERE a.deleted_at IS NULL
		  AND ($1 = '' OR a.name ILIKE '%' || $1 || '%' OR a.email ILIKE '%' || $1 || '%')`
	if err := r.db.QueryRow(ctx, countQuery, params.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count admins: %w", err)
	}

	query := `
		SELECT ` + adminColumns + `
		FROM admins a
		JOIN roles r ON r.id = a.role_id
		WHERE a.deleted_at IS NULL
		  AND ($1 = '' OR a.name ILIKE '%' || $1 || '%' OR a.email ILIKE '%' || $1 || '%')
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`

	offset := (params.Page - 1) * params.Limit
	rows, err := r.db.Query(ctx, query, params.Search, params.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*identity.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, err
		}
		admins = append(admins, a)
	}
	return admins, total, rows.Err()
}

func (r *AdminRepository) Update(ctx context.Context, admin *identity.Admin) error {
	query := `
		UPDATE admins
		SET name = $2, email = $3, role_id = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, admin.ID, admin.Name, admin.Email, admin.RoleID)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrEmailTaken
		}
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE admins
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE admins
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	query := `
		UPDATE admins
		SET refresh_token_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("failed to set refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE admins
		SET deleted_at = NOW(), refresh_token_hash = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}
