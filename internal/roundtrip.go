// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

// Package internal holds test helpers shared across the module.
package internal

import "net/http"

var _ http.RoundTripper = (*RoundTripFunc)(nil)

// RoundTripFunc is an adapter to allow the use of ordinary functions as
// RoundTrippers, similar to [http.HandlerFunc].
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements the RoundTripper interface by calling f(r).
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
