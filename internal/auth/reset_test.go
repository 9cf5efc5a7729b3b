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

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/crypto"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/mailer"
)

func TestService_RequestReset(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	require.NoError(t, env.svc.RequestReset(context.Background(), "jane@example.com"))

	user := env.users.users["user-1"]
	require.NotNil(t, user.ResetCode)
	assert.Len(t, *user.ResetCode, 6)
	require.NotNil(t, user.ResetCodeExpiresAt)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *user.ResetCodeExpiresAt, time.Minute)

	require.Len(t, env.mail.to, 1)
	assert.Equal(t, "jane@example.com", env.mail.to[0])
	assert.Equal(t, mailer.TemplateResetCode, env.mail.tmpl[0])
	assert.Equal(t, *user.ResetCode, env.mail.data[0]["Code"])
}

func TestService_RequestReset_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
	assert.Zero(t, env.mail.calls)
}

func TestService_RequestReset_MailFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")
	env.mail.fail = true

	err := env.svc.RequestReset(context.Background(), "jane@example.com")
	assert.Error(t, err)
}

func TestService_ResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	require.NoError(t, env.svc.RequestReset(context.Background(), "jane@example.com"))
	code := *env.users.users["user-1"].ResetCode

	token, err := env.svc.VerifyResetCode(context.Background(), "jane@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// A successful verify burns the code.
	assert.Nil(t, env.users.users["user-1"].ResetCode)

	require.NoError(t, env.svc.CompleteReset(context.Background(), token, "new-password"))

	_, _, err = env.svc.Login(context.Background(), RealmUser, "jane@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.svc.Login(context.Background(), RealmUser, "jane@example.com", "new-password")
	assert.NoError(t, err)
}

func TestService_VerifyResetCode_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	require.NoError(t, env.svc.RequestReset(context.Background(), "jane@example.com"))
	code := *env.users.users["user-1"].ResetCode

	_, err := env.svc.VerifyResetCode(context.Background(), "jane@example.com", code)
	require.NoError(t, err)

	// Same code again, still inside its window: rejected.
	_, err = env.svc.VerifyResetCode(context.Background(), "jane@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestService_VerifyResetCode_WrongCode(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	require.NoError(t, env.svc.RequestReset(context.Background(), "jane@example.com"))

	_, err := env.svc.VerifyResetCode(context.Background(), "jane@example.com", "000000")
	// Guard against the one-in-a-million collision with the real code.
	if *env.users.users["user-1"].ResetCode != "000000" {
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
}

func TestService_VerifyResetCode_Expired(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "jane@example.com", "old-password")

	code := "123456"
	past := time.Now().Add(-time.Second)
	user.ResetCode = &code
	user.ResetCodeExpiresAt = &past

	_, err := env.svc.VerifyResetCode(context.Background(), "jane@example.com", code)
	assert.ErrorIs(t, err, ErrExpiredOTP)
}

func TestService_CompleteReset_WrongPurpose(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	// An ordinary access token has the right signature and expiry but no
	// reset purpose.
	_, pair, err := env.svc.Login(context.Background(), RealmUser, "jane@example.com", "old-password")
	require.NoError(t, err)

	err = env.svc.CompleteReset(context.Background(), pair.AccessToken, "new-password")
	assert.ErrorIs(t, err, ErrWrongPurpose)
}

func TestService_CompleteReset_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	tokens := newTestTokenService(t)
	token, err := tokens.IssueWithTTL(Claims{
		Purpose:          PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, RealmUser, TokenAccess, -time.Second)
	require.NoError(t, err)

	err = env.svc.CompleteReset(context.Background(), token, "new-password")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_CompleteReset_HashesPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jane@example.com", "old-password")

	require.NoError(t, env.svc.RequestReset(context.Background(), "jane@example.com"))
	code := *env.users.users["user-1"].ResetCode
	token, err := env.svc.VerifyResetCode(context.Background(), "jane@example.com", code)
	require.NoError(t, err)

	require.NoError(t, env.svc.CompleteReset(context.Background(), token, "new-password"))

	stored := env.users.users["user-1"].PasswordHash
	require.NotNil(t, stored)
	assert.NotEqual(t, "new-password", *stored)
	assert.True(t, crypto.VerifyPassword("new-password", *stored))
}
