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
)

const (
	// otpDigits is the length of the emailed reset code.
	otpDigits = 6
	// otpTTL bounds both the reset code and the reset token it exchanges for.
	otpTTL = 10 * time.Minute
)

// RequestReset generates a one-time reset code for the account, stores it
// with its expiry, and emails it. Unknown emails are reported as not found;
// a mail delivery failure surfaces to the caller rather than leaving the
// user waiting for a code that never arrives.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return identity.ErrUserNotFound
	}

	code, err := crypto.GenerateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	expiresAt := time.Now().Add(otpTTL)
	if err := s.users.SetResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.mail.Send(ctx, user.Email, s.resetTmpl, map[string]any{
		"Name": user.Name,
		"Code": code,
	}); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeResetRequested,
		Realm:    string(RealmUser),
		ActorID:  user.ID,
		Resource: "password",
	})

	return nil
}

// VerifyResetCode checks the emailed code and, on success, clears it and
// issues a short-lived reset token. The clear makes the code single-use:
// presenting it a second time fails even inside its validity window. Codes
// are rejected the instant their expiry passes.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", identity.ErrUserNotFound
	}

	if user.ResetCode == nil || *user.ResetCode != code {
		return "", ErrInvalidOTP
	}
	if user.ResetCodeExpiresAt == nil || !time.Now().Before(*user.ResetCodeExpiresAt) {
		return "", ErrExpiredOTP
	}

	if err := s.users.ClearResetCode(ctx, user.ID); err != nil {
		return "", fmt.Errorf("failed to clear reset code: %w", err)
	}

	claims := Claims{
		Email:   user.Email,
		Purpose: PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
		},
	}
	return s.tokens.IssueWithTTL(claims, RealmUser, TokenAccess, otpTTL)
}

// CompleteReset sets a new password in exchange for a valid reset token.
// Tokens minted for any other purpose are rejected even when their
// signature and expiry check out.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, RealmUser, TokenAccess)
	if err != nil {
		return err
	}
	if claims.Purpose != PurposePasswordReset {
		return ErrWrongPurpose
	}

	user, err := s.users.GetByID(ctx, claims.PrincipalID())
	if err != nil {
		return identity.ErrUserNotFound
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeResetCompleted,
		Realm:    string(RealmUser),
		ActorID:  user.ID,
		Resource: "password",
	})

	return nil
}
