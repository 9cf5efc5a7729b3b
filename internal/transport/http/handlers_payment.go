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

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/observability/logger"
	"github.com/pulsefit/pulsefit/internal/payment"
)

// CreatePaymentLinkRequest represents a checkout link request
type CreatePaymentLinkRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
}

// CreatePaymentLink creates a Paymob checkout link for the authenticated
// user.
func (h *Handler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AmountCents <= 0 {
		respondError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	user, err := h.users.Get(r.Context(), claims.PrincipalID())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	link, err := h.payments.CreatePaymentLink(r.Context(), req.AmountCents, user.Email, user.Name, phone, req.Reference)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create payment link",
			logger.Error(err),
			logger.PrincipalID(user.ID),
		)
		respondError(w, http.StatusBadGateway, "payment gateway unavailable")
		return
	}

	respondJSON(w, http.StatusCreated, link)
}

// paymobCallbackBody wraps the transaction object Paymob posts.
type paymobCallbackBody struct {
	Type string          `json:"type"`
	Obj  json.RawMessage `json:"obj"`
}

// PaymobCallback receives the gateway's transaction webhook. The request
// authenticates by HMAC signature (query parameter), never by bearer
// token; a bad signature is rejected before the payload is acted on.
func (h *Handler) PaymobCallback(w http.ResponseWriter, r *http.Request) {
	var body paymobCallbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid callback body")
		return
	}

	var tx payment.Transaction
	if err := json.Unmarshal(body.Obj, &tx); err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction payload")
		return
	}

	signature := r.URL.Query().Get("hmac")
	if err := h.payments.VerifyCallback(&tx, signature); err != nil {
		slog.WarnContext(r.Context(), "rejected payment callback",
			logger.Error(err),
			logger.RemoteAddr(r.RemoteAddr),
		)
		respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:     audit.TypePaymentCallback,
		Resource: "payment",
		Metadata: map[string]any{
			"transaction_id": tx.ID.String(),
			"order_id":       tx.Order.ID.String(),
			"amount_cents":   tx.AmountCents.String(),
			"success":        tx.Success,
		},
		IPAddress: getIPAddress(r),
	})

	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
