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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/identity"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func userRow(mock pgxmock.PgxPoolIface, u *identity.User) *pgxmock.Rows {
	return mock.NewRows([]string{
		"id", "name", "username", "email", "phone", "password_hash", "role", "status",
		"google_id", "facebook_id", "reset_code", "reset_code_expires_at", "refresh_token_hash",
		"profile_image", "created_at", "updated_at", "deleted_at",
	}).AddRow(
		u.ID, u.Name, u.Username, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status,
		u.GoogleID, u.FacebookID, u.ResetCode, u.ResetCodeExpiresAt, u.RefreshTokenHash,
		u.ProfileImage, u.CreatedAt, u.UpdatedAt, u.DeletedAt,
	)
}

func sampleUser() *identity.User {
	hash := "$2a$10$hash"
	return &identity.User{
		ID:           "user-1",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: &hash,
		Role:         identity.RoleTrainee,
		Status:       identity.StatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Username, u.Email, u.Phone, u.PasswordHash,
			u.Role, u.Status, u.GoogleID, u.FacebookID, u.ProfileImage).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), u))
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	// The violated index names the colliding column; a duplicate email must
	// not be reported as a taken username.
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"duplicate email", "users_email_unique", identity.ErrEmailTaken},
		{"duplicate username", "users_username_unique", identity.ErrUsernameTaken},
		{"unnamed constraint", "", identity.ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			repo := NewUserRepository(mock)
			u := sampleUser()

			mock.ExpectExec("INSERT INTO users").
				WithArgs(u.ID, u.Name, u.Username, u.Email, u.Phone, u.PasswordHash,
					u.Role, u.Status, u.GoogleID, u.FacebookID, u.ProfileImage).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			assert.ErrorIs(t, repo.Create(context.Background(), u), tt.want)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)
	u := sampleUser()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(mock, u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestUserRepository_GetByExternalID(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)
	u := sampleUser()
	googleID := "google-123"
	u.GoogleID = &googleID

	mock.ExpectQuery("SELECT (.+) FROM users WHERE google_id").
		WithArgs(googleID).
		WillReturnRows(userRow(mock, u))

	got, err := repo.GetByExternalID(context.Background(), identity.ProviderGoogle, googleID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepository_GetByExternalID_UnknownProvider(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)

	_, err := repo.GetByExternalID(context.Background(), "github", "x")
	assert.Error(t, err)
}

func TestUserRepository_SetResetCode(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)
	expires := time.Now().Add(10 * time.Minute)

	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", "123456", expires).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.SetResetCode(context.Background(), "user-1", "123456", expires))
}

func TestUserRepository_SetRefreshTokenHash_Nil(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.SetRefreshTokenHash(context.Background(), "user-1", nil))
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("UPDATE users").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), identity.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	mock := newMockDB(t)
	repo := NewUserRepository(mock)
	u := sampleUser()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("jane", identity.RoleTrainee).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("jane", identity.RoleTrainee, 10, 0).
		WillReturnRows(userRow(mock, u))

	users, total, err := repo.List(context.Background(), identity.UserListParams{
		Search:    "jane",
		Role:      identity.RoleTrainee,
		Page:      1,
		Limit:     10,
		SortField: "created_at",
		SortDesc:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, u.ID, users[0].ID)
}
