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

	"github.com/pulsefit/pulsefit/internal/rbac"
)

// RoleRepository implements rbac.RoleRepository on PostgreSQL.
type RoleRepository struct {
	db Pool
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db Pool) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *rbac.Role) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO roles (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`,
		role.ID, role.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return rbac.ErrRoleNameTaken
		}
		return fmt.Errorf("failed to create role: %w", err)
	}

	if err := insertGrants(ctx, tx, role); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*rbac.Role, error) {
	role := &rbac.Role{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if err := r.loadGrants(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*rbac.Role, error) {
	role := &rbac.Role{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if err := r.loadGrants(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*rbac.Role, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*rbac.Role
	for rows.Next() {
		role := &rbac.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, role := range roles {
		if err := r.loadGrants(ctx, role); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

// Replace renames the role and swaps its grant set inside one transaction,
// so readers never observe a role with half its grants applied.
func (r *RoleRepository) Replace(ctx context.Context, role *rbac.Role) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE roles SET name = $2, updated_at = NOW() WHERE id = $1`,
		role.ID, role.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return rbac.ErrRoleNameTaken
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return fmt.Errorf("failed to clear role grants: %w", err)
	}

	if err := insertGrants(ctx, tx, role); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var held int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM admins WHERE role_id = $1 AND deleted_at IS NULL`, id).
		Scan(&held)
	if err != nil {
		return fmt.Errorf("failed to count role holders: %w", err)
	}
	if held > 0 {
		return rbac.ErrRoleInUse
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete role grants: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}

	return tx.Commit(ctx)
}

func (r *RoleRepository) loadGrants(ctx context.Context, role *rbac.Role) error {
	rows, err := r.db.Query(ctx, `
		SELECT rp.permission_id, p.name, rp.access_level
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name`, role.ID)
	if err != nil {
		return fmt.Errorf("failed to load role grants: %w", err)
	}
	defer rows.Close()

	role.Grants = nil
	for rows.Next() {
		var g rbac.Grant
		if err := rows.Scan(&g.PermissionID, &g.PermissionName, &g.Access); err != nil {
			return fmt.Errorf("failed to scan grant: %w", err)
		}
		role.Grants = append(role.Grants, g)
	}
	return rows.Err()
}

func insertGrants(ctx context.Context, tx pgx.Tx, role *rbac.Role) error {
	for _, g := range role.Grants {
		_, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id, access_level) VALUES ($1, $2, $3)`,
			role.ID, g.PermissionID, int(g.Access))
		if err != nil {
			return fmt.Errorf("failed to insert grant: %w", err)
		}
	}
	return nil
}

// PermissionRepository implements rbac.PermissionRepository on PostgreSQL.
type PermissionRepository struct {
	db Pool
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db Pool) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Create(ctx context.Context, p *rbac.Permission) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO permissions (id, name, created_at) VALUES ($1, $2, NOW())`,
		p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*rbac.Permission, error) {
	p := &rbac.Permission{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM permissions WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return p, nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]*rbac.Permission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []*rbac.Permission
	for rows.Next() {
		p := &rbac.Permission{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GrantStore implements rbac.GrantStore on PostgreSQL.
type GrantStore struct {
	db Pool
}

// NewGrantStore creates a new grant store
func NewGrantStore(db Pool) *GrantStore {
	return &GrantStore{db: db}
}

// GrantFor returns the stored access mask for one (role, resource) pair.
// Absence of a row maps to rbac.ErrPermissionNotFound, which evaluation
// treats as deny.
func (s *GrantStore) GrantFor(ctx context.Context, roleID, resource string) (rbac.AccessLevel, error) {
	var level int
	err := s.db.QueryRow(ctx, `
		SELECT rp.access_level
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND p.name = $2`, roleID, resource).
		Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, rbac.ErrPermissionNotFound
		}
		return 0, fmt.Errorf("failed to look up grant: %w", err)
	}
	return rbac.AccessLevel(level), nil
}
