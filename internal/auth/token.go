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
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulsefit/pulsefit/internal/config"
)

// TokenKind distinguishes the two credential lifetimes within a realm.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// PurposePasswordReset marks single-purpose reset tokens issued by the
// OTP-verification step. They are signed with the user access secret but are
// only accepted by CompleteReset.
const PurposePasswordReset = "password-reset"

// Claims is the signed payload carried by every token.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// PrincipalID returns the subject claim.
func (c *Claims) PrincipalID() string {
	return c.Subject
}

// TokenService issues and verifies HS256 tokens. It holds four independent
// (secret, ttl) configurations: one per (realm, kind) pair.
type TokenService struct {
	configs map[Realm]map[TokenKind]config.TokenConfig
}

// NewTokenService builds a token service from the auth configuration. Any
// missing secret fails construction: a realm must never run with a partially
// configured token setup.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	configs := map[Realm]map[TokenKind]config.TokenConfig{
		RealmAdmin: {
			TokenAccess:  cfg.Admin.Access,
			TokenRefresh: cfg.Admin.Refresh,
		},
		RealmUser: {
			TokenAccess:  cfg.User.Access,
			TokenRefresh: cfg.User.Refresh,
		},
	}

	for realm, kinds := range configs {
		for kind, tc := range kinds {
			if tc.Secret == "" {
				return nil, fmt.Errorf("%w: %s %s", ErrMissingSecret, realm, kind)
			}
			if tc.TTL <= 0 {
				return nil, fmt.Errorf("%w: %s %s ttl", ErrMissingSecret, realm, kind)
			}
		}
	}

	return &TokenService{configs: configs}, nil
}

// TTL returns the configured lifetime for a (realm, kind) pair.
func (s *TokenService) TTL(realm Realm, kind TokenKind) time.Duration {
	return s.configs[realm][kind].TTL
}

// Issue signs claims for the given realm and kind using its configured
// secret and lifetime. Pure aside from reading the clock.
func (s *TokenService) Issue(claims Claims, realm Realm, kind TokenKind) (string, error) {
	tc, ok := s.configs[realm][kind]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrMissingSecret, realm, kind)
	}
	return s.sign(claims, tc.TTL, tc.Secret)
}

// IssueWithTTL signs claims with an explicit lifetime, still using the
// (realm, kind) secret. Used for the short-lived reset token.
func (s *TokenService) IssueWithTTL(claims Claims, realm Realm, kind TokenKind, ttl time.Duration) (string, error) {
	tc, ok := s.configs[realm][kind]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrMissingSecret, realm, kind)
	}
	return s.sign(claims, ttl, tc.Secret)
}

func (s *TokenService) sign(claims Claims, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token against the (realm, kind) secret.
// Returns ErrTokenExpired for expiry, ErrInvalidToken for anything else
// wrong with the token itself.
func (s *TokenService) Verify(token string, realm Realm, kind TokenKind) (*Claims, error) {
	tc, ok := s.configs[realm][kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrMissingSecret, realm, kind)
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tc.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
