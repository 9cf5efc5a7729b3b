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
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/rbac"
)

func TestRoleRepository_Replace_AtomicSwap(t *testing.T) {
	mock := newMockDB(t)
	repo := NewRoleRepository(mock)

	role := &rbac.Role{
		ID:   "role-1",
		Name: "reviewer",
		Grants: []rbac.Grant{
			{PermissionID: "perm-1", PermissionName: "users", Access: rbac.AccessRead},
			{PermissionID: "perm-2", PermissionName: "stories", Access: rbac.AccessFull},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE roles").
		WithArgs(role.ID, role.Name).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM role_permissions").
		WithArgs(role.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO role_permissions").
		WithArgs(role.ID, "perm-1", int(rbac.AccessRead)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO role_permissions").
		WithArgs(role.ID, "perm-2", int(rbac.AccessFull)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Replace(context.Background(), role))
}

func TestRoleRepository_Replace_RollsBackOnGrantFailure(t *testing.T) {
	mock := newMockDB(t)
	repo := NewRoleRepository(mock)

	role := &rbac.Role{
		ID:   "role-1",
		Name: "reviewer",
		Grants: []rbac.Grant{
			{PermissionID: "perm-1", Access: rbac.AccessRead},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE roles").
		WithArgs(role.ID, role.Name).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM role_permissions").
		WithArgs(role.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO role_permissions").
		WithArgs(role.ID, "perm-1", int(rbac.AccessRead)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, repo.Replace(context.Background(), role))
}

func TestRoleRepository_Delete_RefusesHeldRole(t *testing.T) {
	mock := newMockDB(t)
	repo := NewRoleRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("role-1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), "role-1"), rbac.ErrRoleInUse)
}

func TestRoleRepository_Delete_CascadesGrants(t *testing.T) {
	mock := newMockDB(t)
	repo := NewRoleRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("role-1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM role_permissions").
		WithArgs("role-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM roles").
		WithArgs("role-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), "role-1"))
}

func TestGrantStore_GrantFor(t *testing.T) {
	mock := newMockDB(t)
	store := NewGrantStore(mock)

	mock.ExpectQuery("SELECT rp.access_level").
		WithArgs("role-1", "users").
		WillReturnRows(mock.NewRows([]string{"access_level"}).AddRow(int(rbac.AccessRead | rbac.AccessWrite)))

	level, err := store.GrantFor(context.Background(), "role-1", "users")
	require.NoError(t, err)
	assert.Equal(t, rbac.AccessRead|rbac.AccessWrite, level)
}

func TestGrantStore_GrantFor_NoRow(t *testing.T) {
	mock := newMockDB(t)
	store := NewGrantStore(mock)

	mock.ExpectQuery("SELECT rp.access_level").
		WithArgs("role-1", "settings").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GrantFor(context.Background(), "role-1", "settings")
	assert.ErrorIs(t, err, rbac.ErrPermissionNotFound)
}
