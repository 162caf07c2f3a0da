// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nortide/ghapp/internal/api"
)

var (
	_ slog.LogValuer = (*Webhook)(nil)
)

// Webhook is returned by [VerifyWebhookRequest] upon successful
// verification of a webhook request. It carries the raw payload with
// enough header and payload metadata to select the installation the event
// belongs to.
type Webhook struct {
	// ID is the webhook ID received in the X-GitHub-Hook-ID header.
	ID string

	// Event is the event type like "issues", received in the
	// X-GitHub-Event header.
	Event string

	// Payload is the payload received in the POST body.
	Payload []byte

	// Delivery is the unique delivery id received in the
	// X-GitHub-Delivery header.
	Delivery string

	// Signature is the HMAC hex digest of the request body with prefix
	// "sha256=", as received in the X-Hub-Signature-256 header.
	Signature string

	// TargetID is the id of the resource the hook is installed on,
	// received in the X-GitHub-Hook-Installation-Target-ID header. For an
	// app webhook this is the app id.
	TargetID uint64

	// TargetType is the type of the resource the hook is installed on,
	// like "integration" or "repository".
	TargetType string

	// InstallationID is the app installation the event belongs to,
	// extracted from the payload. Zero when the event carries no
	// installation. Use with [WithInstallationID] to build a [Transport]
	// for the installation in the hook event.
	InstallationID uint64
}

func (w *Webhook) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", w.ID),
		slog.String("event_type", w.Event),
		slog.String("delivery_id", w.Delivery),
		slog.String("target_type", w.TargetType),
		slog.Uint64("target_id", w.TargetID),
		slog.Uint64("installation_id", w.InstallationID),
	)
}

// VerifyWebhookRequest verifies the HMAC-SHA256 signature of a webhook
// request.
//
// This function assumes headers are canonical and have not been modified.
// Only HMAC-SHA256 signatures are considered for verification.
//
// Typically an HMAC secret would be []byte, but webhook secrets are
// updated via a web interface which can only accept strings.
func VerifyWebhookRequest(secret string, req *http.Request) (Webhook, error) {
	if req == nil {
		return Webhook{}, fmt.Errorf("%w: request is nil", ErrWebhookRequest)
	}

	if !strings.EqualFold(req.Method, http.MethodPost) {
		return Webhook{}, fmt.Errorf("%w: unsupported method %s",
			ErrWebhookRequest, req.Method)
	}

	if req.Header == nil {
		return Webhook{}, fmt.Errorf("%w: headers are nil", ErrWebhookRequest)
	}

	// Ensure webhook metadata headers are populated.
	requiredHeaders := [...]string{
		api.EventHeader,
		api.HookIDHeader,
		api.DeliveryHeader,
		api.InstallationTargetTypeHeader,
		api.InstallationTargetIDHeader,
		api.ContentTypeHeader,
	}
	for _, item := range requiredHeaders {
		if req.Header.Get(item) == "" {
			return Webhook{}, fmt.Errorf("%w: missing or empty %s header",
				ErrWebhookRequest, item)
		}
	}

	// Only content type application/json is supported.
	if req.Header.Get(api.ContentTypeHeader) != api.ContentTypeJSON {
		return Webhook{}, fmt.Errorf("%w: invalid %s header: %s",
			ErrWebhookRequest, api.ContentTypeHeader, req.Header.Get(api.ContentTypeHeader))
	}

	targetID, err := strconv.ParseUint(req.Header.Get(api.InstallationTargetIDHeader), 10, 64)
	if err != nil {
		return Webhook{}, fmt.Errorf("%w: invalid %s header (%s): %w",
			ErrWebhookRequest, api.InstallationTargetIDHeader,
			req.Header.Get(api.InstallationTargetIDHeader), err)
	}

	// Ensure the X-Hub-Signature-256 header exists and has a valid format.
	signature := req.Header.Get(api.SignatureSHA256Header)
	if signature == "" {
		return Webhook{}, fmt.Errorf("%w: missing or empty %s header",
			ErrWebhookSignature, api.SignatureSHA256Header)
	}

	if !strings.HasPrefix(signature, "sha256=") {
		return Webhook{}, fmt.Errorf("%w: missing prefix sha256= from %s header",
			ErrWebhookSignature, api.SignatureSHA256Header)
	}

	untrusted, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return Webhook{}, fmt.Errorf("%w: signature not hex encoded: %w",
			ErrWebhookSignature, err)
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return Webhook{}, fmt.Errorf("%w: failed to read request body: %w", ErrWebhookRequest, err)
	}

	hasher := hmac.New(sha256.New, []byte(secret))
	hasher.Write(data)
	trusted := hasher.Sum(nil)

	if !hmac.Equal(trusted, untrusted) {
		return Webhook{}, fmt.Errorf("%w: signature mismatch", ErrWebhookSignature)
	}

	w := Webhook{
		ID:         req.Header.Get(api.HookIDHeader),
		Delivery:   req.Header.Get(api.DeliveryHeader),
		Event:      req.Header.Get(api.EventHeader),
		Signature:  signature,
		TargetID:   targetID,
		TargetType: req.Header.Get(api.InstallationTargetTypeHeader),
		Payload:    data,
	}

	// The installation the event belongs to is part of the payload, not
	// the headers. Events for hooks not bound to an app carry none.
	payload := api.WebhookPayload{}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Installation != nil && payload.Installation.ID != nil {
			w.InstallationID = uint64(*payload.Installation.ID)
		}
	}

	return w, nil
}
