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

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/identity"
)

// ProviderProfile is the identity asserted by an external OAuth provider
// after its own verification step.
type ProviderProfile struct {
	Provider   string
	ExternalID string
	Email      string
	Name       string
}

// FederatedLogin resolves a provider identity to a local account and issues
// a token pair. Resolution order: an account already linked to this
// provider identity wins; otherwise an existing account with the provider's
// email gets linked; otherwise a minimal account is created. The returned
// flag reports whether an account was created during this call.
//
// Facebook does not always release an email address, and without one there
// is no safe way to match or create an account, so a Facebook profile with
// no email is rejected outright.
func (s *Service) FederatedLogin(ctx context.Context, profile ProviderProfile) (*Principal, *TokenPair, bool, error) {
	if profile.Provider == identity.ProviderFacebook && profile.Email == "" {
		return nil, nil, false, ErrProviderEmailMissing
	}

	user, isNew, err := s.linkOrCreate(ctx, profile)
	if err != nil {
		return nil, nil, false, err
	}

	principal := &Principal{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Realm:    RealmUser,
		IsActive: true,
	}

	pair, err := s.GenerateTokens(ctx, principal)
	if err != nil {
		return nil, nil, false, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:    audit.TypeOAuthLogin,
		Realm:   string(RealmUser),
		ActorID: user.ID,
		Metadata: map[string]any{
			"provider": profile.Provider,
			"new_user": isNew,
		},
	})

	return principal, pair, isNew, nil
}

func (s *Service) linkOrCreate(ctx context.Context, profile ProviderProfile) (*identity.User, bool, error) {
	user, err := s.users.GetByExternalID(ctx, profile.Provider, profile.ExternalID)
	if err == nil {
		return user, false, nil
	}

	if profile.Email != "" {
		user, err = s.users.GetByEmail(ctx, profile.Email)
		if err == nil {
			if err := s.users.LinkExternalID(ctx, user.ID, profile.Provider, profile.ExternalID); err != nil {
				return nil, false, err
			}
			s.auditLogger.Log(ctx, audit.Event{
				Type:    audit.TypeOAuthLinked,
				Realm:   string(RealmUser),
				ActorID: user.ID,
				Metadata: map[string]any{
					"provider": profile.Provider,
				},
			})
			return user, false, nil
		}
	}

	user = &identity.User{
		ID:     uuid.NewString(),
		Name:   profile.Name,
		Email:  profile.Email,
		Role:   identity.RoleTrainee,
		Status: identity.StatusPendingProfile,
	}
	switch profile.Provider {
	case identity.ProviderGoogle:
		user.GoogleID = &profile.ExternalID
	case identity.ProviderFacebook:
		user.FacebookID = &profile.ExternalID
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
