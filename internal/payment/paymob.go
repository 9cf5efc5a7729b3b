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

// Package payment integrates with the Paymob payment gateway: quick
// payment links for subscription checkout and signed transaction
// callbacks.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pulsefit/pulsefit/internal/config"
)

var (
	ErrAuthFailed     = errors.New("paymob authentication failed")
	ErrLinkFailed     = errors.New("paymob payment link creation failed")
	ErrBadSignature   = errors.New("callback signature mismatch")
	ErrMissingHMACKey = errors.New("paymob hmac secret not configured")
)

// Client talks to the Paymob API.
type Client struct {
	cfg  config.PaymobConfig
	http *http.Client
}

// NewClient creates a Paymob client with a bounded request timeout.
func NewClient(cfg config.PaymobConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentLink is a checkout URL for a single payment.
type PaymentLink struct {
	ID        int64  `json:"id"`
	ClientURL string `json:"client_url"`
}

// Authenticate exchanges the configured credentials for a short-lived API
// token. Paymob tokens last about an hour; callers fetch one per operation
// rather than caching.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if out.Token == "" {
		return "", ErrAuthFailed
	}
	return out.Token, nil
}

// CreatePaymentLink creates a quick payment link for the given amount.
// Amounts are in the currency's smallest unit (piastres for EGP).
func (c *Client) CreatePaymentLink(ctx context.Context, amountCents int64, email, fullName, phone, reference string) (*PaymentLink, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"amount_cents":    strconv.FormatInt(amountCents, 10),
		"currency":        c.cfg.Currency,
		"payment_methods": []string{c.cfg.IntegrationID},
		"email":           email,
		"full_name":       fullName,
		"phone_number":    phone,
		"is_live":         true,
		"reference_id":    reference,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.QuickLinkURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrLinkFailed, resp.StatusCode, msg)
	}

	var link PaymentLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkFailed, err)
	}
	return &link, nil
}

// Transaction is the callback payload Paymob posts after a payment attempt.
// Field order in hmacKeys below is the order Paymob concatenates values for
// signing; it must not change.
type Transaction struct {
	AmountCents          json.Number `json:"amount_cents"`
	CreatedAt            string      `json:"created_at"`
	Currency             string      `json:"currency"`
	ErrorOccured         bool        `json:"error_occured"`
	HasParentTransaction bool        `json:"has_parent_transaction"`
	ID                   json.Number `json:"id"`
	IntegrationID        json.Number `json:"integration_id"`
	Is3DSecure           bool        `json:"is_3d_secure"`
	IsAuth               bool        `json:"is_auth"`
	IsCapture            bool        `json:"is_capture"`
	IsRefunded           bool        `json:"is_refunded"`
	IsStandalonePayment  bool        `json:"is_standalone_payment"`
	IsVoided             bool        `json:"is_voided"`
	Order                struct {
		ID json.Number `json:"id"`
	} `json:"order"`
	Owner      json.Number `json:"owner"`
	Pending    bool        `json:"pending"`
	SourceData struct {
		Pan     string `json:"pan"`
		SubType string `json:"sub_type"`
		Type    string `json:"type"`
	} `json:"source_data"`
	Success bool `json:"success"`
}

// signaturePayload concatenates the transaction fields in Paymob's fixed
// key order. Booleans render as "true"/"false", numbers as their decimal
// text.
func (t *Transaction) signaturePayload() string {
	parts := []string{
		t.AmountCents.String(),
		t.CreatedAt,
		t.Currency,
		strconv.FormatBool(t.ErrorOccured),
		strconv.FormatBool(t.HasParentTransaction),
		t.ID.String(),
		t.IntegrationID.String(),
		strconv.FormatBool(t.Is3DSecure),
		strconv.FormatBool(t.IsAuth),
		strconv.FormatBool(t.IsCapture),
		strconv.FormatBool(t.IsRefunded),
		strconv.FormatBool(t.IsStandalonePayment),
		strconv.FormatBool(t.IsVoided),
		t.Order.ID.String(),
		t.Owner.String(),
		strconv.FormatBool(t.Pending),
		t.SourceData.Pan,
		t.SourceData.SubType,
		t.SourceData.Type,
		strconv.FormatBool(t.Success),
	}
	var buf bytes.Buffer
	for _, p := range parts {
		buf.WriteString(p)
	}
	return buf.String()
}

// VerifyCallback checks the HMAC-SHA512 signature Paymob attaches to
// transaction callbacks. The comparison is constant-time.
func (c *Client) VerifyCallback(tx *Transaction, signature string) error {
	if c.cfg.HMACSecret == "" {
		return ErrMissingHMACKey
	}

	mac := hmac.New(sha512.New, []byte(c.cfg.HMACSecret))
	mac.Write([]byte(tx.signaturePayload()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrBadSignature
	}
	return nil
}
