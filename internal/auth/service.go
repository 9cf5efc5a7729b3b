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
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/crypto"
	"github.com/pulsefit/pulsefit/internal/identity"
	"github.com/pulsefit/pulsefit/internal/mailer"
)

// AdminStore is the narrow view of admin persistence the auth core needs.
// Implemented by the postgres admin repository; injected to avoid a mutual
// dependency between the auth and identity layers.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*identity.Admin, error)
	GetByID(ctx context.Context, id string) (*identity.Admin, error)
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error
}

// UserStore is the narrow view of user persistence the auth core needs.
type UserStore interface {
	Create(ctx context.Context, user *identity.User) error
	GetByEmail(ctx context.Context, email string) (*identity.User, error)
	GetByID(ctx context.Context, id string) (*identity.User, error)
	GetByExternalID(ctx context.Context, provider, externalID string) (*identity.User, error)
	LinkExternalID(ctx context.Context, id, provider, externalID string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, id string) error
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error
}

// Principal is the public-safe projection of an authenticated actor. It is
// what credential validation returns; it never carries a password hash.
type Principal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Realm    Realm  `json:"-"`
	IsActive bool   `json:"-"`
}

// TokenPair is one access token plus its paired refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service is the authentication core: credential validation, token issuance
// and rotation, password reset, and federated login.
type Service struct {
	admins      AdminStore
	users       UserStore
	tokens      *TokenService
	mail        mailer.Mailer
	resetTmpl   string
	auditLogger audit.Logger
}

// NewService creates a new auth service
func NewService(admins AdminStore, users UserStore, tokens *TokenService, mail mailer.Mailer, resetTemplate string, auditLogger audit.Logger) *Service {
	return &Service{
		admins:      admins,
		users:       users,
		tokens:      tokens,
		mail:        mail,
		resetTmpl:   resetTemplate,
		auditLogger: auditLogger,
	}
}

// ValidateCredentials checks an email/password pair against the realm's
// store. Unknown email and wrong password both return ErrInvalidCredentials.
func (s *Service) ValidateCredentials(ctx context.Context, realm Realm, email, password string) (*Principal, error) {
	switch realm {
	case RealmAdmin:
		admin, err := s.admins.GetByEmail(ctx, email)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		if !crypto.VerifyPassword(password, admin.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &Principal{
			ID:       admin.ID,
			Name:     admin.Name,
			Email:    admin.Email,
			Role:     admin.RoleName,
			Realm:    RealmAdmin,
			IsActive: admin.IsActive,
		}, nil
	case RealmUser:
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		if user.PasswordHash == nil || !crypto.VerifyPassword(password, *user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &Principal{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			Realm:    RealmUser,
			IsActive: true,
		}, nil
	default:
		return nil, ErrInvalidCredentials
	}
}

// Login validates credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, realm Realm, email, password string) (*Principal, *TokenPair, error) {
	principal, err := s.ValidateCredentials(ctx, realm, email, password)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Realm:    string(realm),
			Resource: "login",
		})
		return nil, nil, err
	}

	pair, err := s.GenerateTokens(ctx, principal)
	if err != nil {
		return nil, nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		Realm:    string(realm),
		ActorID:  principal.ID,
		Resource: "login",
	})

	return principal, pair, nil
}

// GenerateTokens issues an access/refresh pair for the principal and stores
// the bcrypt hash of the refresh token against the principal's row. The
// replacement is a single row write: two concurrent logins both succeed, but
// each invalidates the other's prior refresh token (last-write-wins).
func (s *Service) GenerateTokens(ctx context.Context, principal *Principal) (*TokenPair, error) {
	claims := Claims{
		Name:  principal.Name,
		Email: principal.Email,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: principal.ID,
		},
	}

	access, err := s.tokens.Issue(claims, principal.Realm, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(claims, principal.Realm, TokenRefresh)
	if err != nil {
		return nil, err
	}

	hash, err := crypto.HashToken(refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	if err := s.setRefreshTokenHash(ctx, principal.Realm, principal.ID, &hash); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token must verify against the realm's refresh secret AND match the hash
// stored on the principal's row; tokens surviving verification but already
// rotated away are rejected. Rotation stores the new hash, revoking the old
// token.
func (s *Service) Refresh(ctx context.Context, realm Realm, token string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(token, realm, TokenRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}

	principal, storedHash, err := s.lookupPrincipal(ctx, realm, claims.PrincipalID())
	if err != nil {
		return nil, ErrUnauthorized
	}
	if storedHash == nil || !crypto.VerifyToken(token, *storedHash) {
		return nil, ErrUnauthorized
	}

	pair, err := s.GenerateTokens(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenRefreshed,
		Realm:    string(realm),
		ActorID:  principal.ID,
		Resource: "token",
	})

	return pair, nil
}

// Logout revokes all sessions for the principal by clearing the stored
// refresh-token hash.
func (s *Service) Logout(ctx context.Context, realm Realm, principalID string) error {
	if err := s.setRefreshTokenHash(ctx, realm, principalID, nil); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLogout,
		Realm:    string(realm),
		ActorID:  principalID,
		Resource: "session",
	})
	return nil
}

func (s *Service) setRefreshTokenHash(ctx context.Context, realm Realm, id string, hash *string) error {
	switch realm {
	case RealmAdmin:
		return s.admins.SetRefreshTokenHash(ctx, id, hash)
	default:
		return s.users.SetRefreshTokenHash(ctx, id, hash)
	}
}

func (s *Service) lookupPrincipal(ctx context.Context, realm Realm, id string) (*Principal, *string, error) {
	switch realm {
	case RealmAdmin:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return &Principal{
			ID:       admin.ID,
			Name:     admin.Name,
			Email:    admin.Email,
			Role:     admin.RoleName,
			Realm:    RealmAdmin,
			IsActive: admin.IsActive,
		}, admin.RefreshTokenHash, nil
	default:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return &Principal{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			Realm:    RealmUser,
			IsActive: true,
		}, user.RefreshTokenHash, nil
	}
}
