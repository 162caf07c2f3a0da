// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import "log/slog"

// Credential is the authorization material attached to a single API
// request. It is a closed interface with exactly two implementations,
// [BearerAssertion] for app scoped requests and [ScopedToken] for
// installation scoped ones, so request code never overloads one token
// field for both meanings.
type Credential interface {
	// authzHeaderValue returns the Authorization header value including
	// the scheme prefix, or empty when the credential carries no material.
	authzHeaderValue() string
}

// BearerAssertion authenticates a request at app scope with a signed
// assertion. Installation resolution, token issuance and app metadata
// requests use this scope.
type BearerAssertion struct {
	Assertion Assertion
}

func (b BearerAssertion) authzHeaderValue() string {
	if b.Assertion.Value == "" {
		return ""
	}
	return "Bearer " + b.Assertion.Value
}

// ScopedToken authenticates a request with an installation access token.
// Token revocation is the one exchange operation using this scope; API
// calls made on behalf of an installation use it as well.
type ScopedToken string

func (s ScopedToken) authzHeaderValue() string {
	if s == "" {
		return ""
	}
	return "Bearer " + string(s)
}

// LogValue implements [slog.LogValuer]. The token is redacted.
func (s ScopedToken) LogValue() slog.Value {
	return slog.StringValue("REDACTED")
}
