// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/nortide/ghapp/internal/api"
)

// Assertions are valid for exactly five minutes from their issue time.
// GitHub rejects app JWTs with a longer lifetime.
const assertionTTL = 5 * time.Minute

// contextSigner is implemented by [crypto.Signer] backends which support
// signing with a [context.Context]. Typically these are backed by remote
// KMS or HSM services where signing involves network calls.
type contextSigner interface {
	SignContext(ctx context.Context, rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error)
}

// Assertion is a signed app JWT, used as the app-scoped bearer credential
// when exchanging for installation tokens. Its value is a secret.
//
// Assertions expire five minutes after they are minted. Freshness is
// checked before every use; mint a new one with [NewAssertion] when
// [Assertion.IsFresh] returns false.
//
// See: https://docs.github.com/en/apps/creating-github-apps/authenticating-with-a-github-app/generating-a-json-web-token-jwt-for-a-github-app
type Assertion struct {
	// Value is the signed compact JWS. This is a secret.
	Value string `json:"value" yaml:"value"`

	// AppID is the app id the assertion was minted for.
	AppID uint64 `json:"app_id" yaml:"app_id"`

	// IssuedAt is the time the assertion was minted at.
	IssuedAt time.Time `json:"issued_at" yaml:"issued_at"`

	// Exp is the time the assertion expires at, always [assertionTTL]
	// after IssuedAt.
	Exp time.Time `json:"exp" yaml:"exp"`
}

// IsFresh checks if the assertion is non-empty and currently within its
// validity window.
func (a Assertion) IsFresh() bool {
	if a.Value == "" {
		return false
	}
	now := time.Now()
	return !now.Before(a.IssuedAt) && now.Before(a.Exp)
}

// LogValue implements [slog.LogValuer]. The signed value is redacted.
func (a Assertion) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("value", "REDACTED"),
		slog.Uint64("app_id", a.AppID),
		slog.Time("issued_at", a.IssuedAt),
		slog.Time("exp", a.Exp),
	)
}

// NewAssertion mints a new RS256 signed assertion for the app identity,
// valid from now for the next five minutes.
//
// The identity is validated first; an unusable id or key fails with
// [ErrConfiguration] before any signing is attempted. Signing failures
// wrap [ErrSigning]. If the identity's key implements
//
//	SignContext(ctx context.Context, rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error)
//
// it is preferred over [crypto.Signer], so KMS backed keys can honor
// context cancellation.
func NewAssertion(ctx context.Context, id Identity) (Assertion, error) {
	if err := id.validate(); err != nil {
		return Assertion{}, err
	}
	return mintAssertion(ctx, id.Key, id.AppID, time.Now())
}

// mintAssertion builds and signs the compact JWS. now is truncated to
// second precision, as claims carry unix seconds.
func mintAssertion(ctx context.Context, key crypto.Signer, appid uint64, now time.Time) (Assertion, error) {
	iat := now.UTC().Truncate(time.Second)
	exp := iat.Add(assertionTTL)

	claims, err := json.Marshal(api.AssertionClaims{
		Issuer:   strconv.FormatUint(appid, 10),
		IssuedAt: iat.Unix(),
		Exp:      exp.Unix(),
	})
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: failed to encode claims: %w", ErrSigning, err)
	}

	unsigned := api.EncodedAssertionHeader + "." + base64.RawURLEncoding.EncodeToString(claims)
	digest := sha256.Sum256([]byte(unsigned))

	var signature []byte
	if cs, ok := key.(contextSigner); ok {
		if ctx == nil {
			ctx = context.Background()
		}
		signature, err = cs.SignContext(ctx, rand.Reader, digest[:], crypto.SHA256)
	} else {
		signature, err = key.Sign(rand.Reader, digest[:], crypto.SHA256)
	}
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return Assertion{
		Value:    unsigned + "." + base64.RawURLEncoding.EncodeToString(signature),
		AppID:    appid,
		IssuedAt: iat,
		Exp:      exp,
	}, nil
}
