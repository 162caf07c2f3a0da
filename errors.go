// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

var (
	_ error = Error("")
)

// Error is immutable error representation.
//
// Error strings themselves are NOT part of semver compatibility guarantees.
// Use exported symbols with [errors.Is] instead of matching error strings.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

// Errors returned by this package. Each failure class maps to exactly one
// sentinel, every operation either fully succeeds or fails wrapping one of
// these. Nothing is retried or suppressed.
//
//   - [ErrConfiguration] is returned when the app identity is incomplete or
//     unusable (missing app id, missing or malformed key). Detected before
//     any signing attempt or network call.
//   - [ErrSigning] is returned when the signing operation itself fails.
//   - [ErrAssertionExpired] is returned when an assertion is presented
//     outside its validity window. Detected before any network call.
//   - [ErrTarget] is returned for installation target strings which name
//     neither an owner nor an owner/repo pair.
//   - [ErrResolution] is returned when the API rejects the assertion or the
//     target has no matching installation.
//   - [ErrTokenIssuance] is returned when the API rejects an installation
//     token request.
const (
	ErrConfiguration    = Error("ghapp: app configuration is invalid")
	ErrSigning          = Error("ghapp: failed to sign assertion")
	ErrAssertionExpired = Error("ghapp: assertion is not within its validity window")
	ErrTarget           = Error("ghapp: invalid installation target")
	ErrResolution       = Error("ghapp: failed to resolve installation")
	ErrTokenIssuance    = Error("ghapp: failed to issue installation token")
)

// Errors returned by [VerifyWebhookRequest].
//
//   - [ErrWebhookRequest] is returned when the request is invalid or missing
//     webhook metadata headers (X-GitHub-Event, X-GitHub-Hook-ID etc).
//   - [ErrWebhookSignature] is returned when the signature is missing,
//     malformed or does not match.
const (
	ErrWebhookRequest   = Error("ghapp(webhook): invalid request")
	ErrWebhookSignature = Error("ghapp(webhook): signature is invalid")
)
