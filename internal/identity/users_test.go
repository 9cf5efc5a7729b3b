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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/crypto"
	"github.com/pulsefit/pulsefit/internal/mailer"
)

// mockUserRepo is an in-memory UserRepository keyed by ID.
type mockUserRepo struct {
	users map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*User{}}
}

func (m *mockUserRepo) Create(_ context.Context, user *User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) GetByExternalID(_ context.Context, provider, externalID string) (*User, error) {
	for _, u := range m.users {
		switch provider {
		case ProviderGoogle:
			if u.GoogleID != nil && *u.GoogleID == externalID {
				return u, nil
			}
		case ProviderFacebook:
			if u.FacebookID != nil && *u.FacebookID == externalID {
				return u, nil
			}
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) LinkExternalID(_ context.Context, id, provider, externalID string) error {
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if provider == ProviderGoogle {
		user.GoogleID = &externalID
	} else {
		user.FacebookID = &externalID
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ UserListParams) ([]*User, int, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = &hash
	return nil
}

func (m *mockUserRepo) SetResetCode(_ context.Context, id, code string, expiresAt time.Time) error {
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ResetCode = &code
	user.ResetCodeExpiresAt = &expiresAt
	return nil
}

func (m *mockUserRepo) ClearResetCode(_ context.Context, id string) error {
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ResetCode = nil
	user.ResetCodeExpiresAt = nil
	return nil
}

func (m *mockUserRepo) SetRefreshTokenHash(_ context.Context, id string, hash *string) error {
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshTokenHash = hash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// recordingMailer captures sent mail for inspection.
type recordingMailer struct {
	to   []string
	tmpl []string
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, to, tmpl string, _ map[string]any) error {
	if m.fail {
		return assert.AnError
	}
	m.to = append(m.to, to)
	m.tmpl = append(m.tmpl, tmpl)
	return nil
}

func newTestUsersService() (*UsersService, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewUsersService(repo, &recordingMailer{}, audit.NewSlogLogger()), repo
}

func TestUsersService_SignUp(t *testing.T) {
	svc, _ := newTestUsersService()

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Name:     "Trainee",
		Email:    "trainee@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleTrainee, user.Role, "role defaults to trainee")
	assert.Equal(t, StatusActive, user.Status)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, crypto.VerifyPassword("secret-password", *user.PasswordHash))
}

func TestUsersService_SignUp_SendsWelcomeMail(t *testing.T) {
	repo := newMockUserRepo()
	mail := &recordingMailer{}
	svc := NewUsersService(repo, mail, audit.NewSlogLogger())

	_, err := svc.SignUp(context.Background(), SignUpParams{
		Name:     "Trainee",
		Email:    "trainee@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	require.Len(t, mail.tmpl, 1)
	assert.Equal(t, mailer.TemplateWelcome, mail.tmpl[0])
	assert.Equal(t, "trainee@example.com", mail.to[0])
}

func TestUsersService_SignUp_MailFailureDoesNotBlock(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUsersService(repo, &recordingMailer{fail: true}, audit.NewSlogLogger())

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Name:     "Trainee",
		Email:    "trainee@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err, "mail outage must not block sign-up")
	assert.Equal(t, StatusActive, user.Status)
}

func TestUsersService_SignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newTestUsersService()

	_, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "First", Email: "trainee@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), SignUpParams{
		Name: "Second", Email: "trainee@example.com", Password: "another-password",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUsersService_SignUp_DuplicateUsername(t *testing.T) {
	svc, _ := newTestUsersService()

	username := "lifter"
	_, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "First", Username: &username, Email: "a@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), SignUpParams{
		Name: "Second", Username: &username, Email: "b@example.com", Password: "secret-password",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUsersService_Update_UsernameConflict(t *testing.T) {
	svc, _ := newTestUsersService()

	taken := "lifter"
	_, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "First", Username: &taken, Email: "a@example.com", Password: "secret-password",
	})
	require.NoError(t, err)
	second, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "Second", Email: "b@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, UpdateUserParams{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUsersService_CompleteProfile_ActivatesPendingAccount(t *testing.T) {
	svc, repo := newTestUsersService()

	user := &User{
		ID:     "user-1",
		Name:   "Federated",
		Email:  "fed@example.com",
		Role:   RoleTrainee,
		Status: StatusPendingProfile,
	}
	repo.users[user.ID] = user

	phone := "+201234567890"
	updated, err := svc.CompleteProfile(context.Background(), user.ID, UpdateUserParams{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, updated.Status)
	assert.Equal(t, &phone, updated.Phone)
}

func TestUsersService_ChangePassword(t *testing.T) {
	svc, repo := newTestUsersService()

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "Trainee", Email: "trainee@example.com", Password: "old-password",
	})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "not-the-password", "new-password")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("same password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "old-password", "old-password")
		assert.ErrorIs(t, err, ErrSamePassword)
	})

	t.Run("success", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "old-password", "new-password")
		require.NoError(t, err)
		assert.True(t, crypto.VerifyPassword("new-password", *repo.users[user.ID].PasswordHash))
	})
}

func TestUsersService_ChangePassword_FederatedOnlyAccount(t *testing.T) {
	svc, repo := newTestUsersService()

	repo.users["user-1"] = &User{
		ID:     "user-1",
		Email:  "fed@example.com",
		Role:   RoleTrainee,
		Status: StatusActive,
	}

	err := svc.ChangePassword(context.Background(), "user-1", "anything", "new-password")
	assert.ErrorIs(t, err, ErrWrongPassword,
		"accounts without a local password cannot change one")
}

func TestUsersService_Deactivate_RevokesSessions(t *testing.T) {
	svc, repo := newTestUsersService()

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "Trainee", Email: "trainee@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	hash := "stored-refresh-hash"
	repo.users[user.ID].RefreshTokenHash = &hash

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))
	assert.Nil(t, repo.users[user.ID].RefreshTokenHash)
}
