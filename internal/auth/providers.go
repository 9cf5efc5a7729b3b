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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pulsefit/pulsefit/internal/config"
	"github.com/pulsefit/pulsefit/internal/identity"
)

// ProviderVerifier validates a provider-issued token server-side and
// returns the identity the provider asserts. Client-supplied profile data
// is never trusted directly.
type ProviderVerifier interface {
	Verify(ctx context.Context, provider, token string) (ProviderProfile, error)
}

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	facebookProfileURL = "https://graph.facebook.com/me"
)

// HTTPProviderVerifier verifies tokens against the providers' own
// endpoints.
type HTTPProviderVerifier struct {
	cfg         config.OAuthConfig
	http        *http.Client
	googleURL   string
	facebookURL string
}

// NewProviderVerifier creates a verifier using the providers' public
// endpoints.
func NewProviderVerifier(cfg config.OAuthConfig) *HTTPProviderVerifier {
	return &HTTPProviderVerifier{
		cfg:         cfg,
		http:        &http.Client{Timeout: 10 * time.Second},
		googleURL:   googleTokenInfoURL,
		facebookURL: facebookProfileURL,
	}
}

func (v *HTTPProviderVerifier) Verify(ctx context.Context, provider, token string) (ProviderProfile, error) {
	switch provider {
	case identity.ProviderGoogle:
		return v.verifyGoogle(ctx, token)
	case identity.ProviderFacebook:
		return v.verifyFacebook(ctx, token)
	default:
		return ProviderProfile{}, fmt.Errorf("%w: unknown provider %s", ErrUnauthorized, provider)
	}
}

// verifyGoogle validates an ID token via Google's tokeninfo endpoint and
// checks the audience against our client ID.
func (v *HTTPProviderVerifier) verifyGoogle(ctx context.Context, idToken string) (ProviderProfile, error) {
	u := v.googleURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ProviderProfile{}, err
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ProviderProfile{}, ErrUnauthorized
	}

	var info struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ProviderProfile{}, ErrUnauthorized
	}
	if v.cfg.GoogleClientID != "" && info.Aud != v.cfg.GoogleClientID {
		return ProviderProfile{}, ErrUnauthorized
	}
	if info.Sub == "" {
		return ProviderProfile{}, ErrUnauthorized
	}

	return ProviderProfile{
		Provider:   identity.ProviderGoogle,
		ExternalID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}

// verifyFacebook exchanges an access token for the profile via the Graph
// API. Facebook may omit the email field.
func (v *HTTPProviderVerifier) verifyFacebook(ctx context.Context, accessToken string) (ProviderProfile, error) {
	u := v.facebookURL + "?fields=id,name,email&access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ProviderProfile{}, err
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ProviderProfile{}, ErrUnauthorized
	}

	var info struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ProviderProfile{}, ErrUnauthorized
	}
	if info.ID == "" {
		return ProviderProfile{}, ErrUnauthorized
	}

	return ProviderProfile{
		Provider:   identity.ProviderFacebook,
		ExternalID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}
