// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nortide/ghapp/internal/api"
)

var (
	_ http.RoundTripper = (*Transport)(nil)
)

// ctxJWTKey is a context key to indicate the round tripper must
// authenticate at app scope with an assertion instead of an installation
// token.
type ctxJWTKey struct{}

// ctxWithJWTKey marks the context app scoped. App metadata and
// installation management requests require assertion authentication even
// when the transport is configured for an installation.
func ctxWithJWTKey(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxJWTKey{}, struct{}{})
}

// ctxHasJWTKey checks if the context is marked app scoped.
func ctxHasJWTKey(ctx context.Context) bool {
	return ctx.Value(ctxJWTKey{}) != nil
}

// Transport is a [http.RoundTripper] which wraps an existing round tripper
// and authenticates every request as the GitHub app or as one of its
// installations.
//
// The 'Authorization' header is populated with a suitable credential for
// all requests: a [ScopedToken] when an installation is configured, a
// [BearerAssertion] otherwise or when the request context is marked app
// scoped. Assertions and tokens are cached and renewed when stale.
//
// Unlike [Client], Transport is stateful. Construction performs no network
// I/O; the installation is resolved and the first token issued on first
// use. Use [Transport.Verify] to check the configuration eagerly instead.
type Transport struct {
	identity  Identity
	client    *Client
	target    Target
	next      http.RoundTripper
	repos     []string
	scopes    map[string]string
	installID atomic.Uint64
	assertion atomic.Value // Assertion
	token     atomic.Value // InstallationToken
}

// NewTransport creates a new [Transport] authenticating as an app or as an
// installation.
//
// How the Transport authenticates depends on the installation options:
//
//   - With no installation options, the Transport can only authenticate at
//     app scope. A very limited number of actions is available at that
//     scope, like listing installations.
//   - Use [WithInstallationID] to access everything available to the
//     installation, including organization scopes and repositories. Combine
//     with [WithPermissions] to limit the scope of access tokens.
//   - Use [WithOwner] or [WithTarget] to select the installation on an
//     account or a repository.
//   - Use [WithRepositories] to scope access tokens to a set of
//     repositories.
//
// Assertions and access tokens are renewed automatically whenever
// required. If only an access token or a bare assertion is required and
// not a round tripper, use [NewInstallationToken] or [NewAssertion]
// instead.
func NewTransport(ctx context.Context, appid uint64, signer crypto.Signer, opts ...Option) (*Transport, error) {
	identity := Identity{AppID: appid, Key: signer}
	if err := identity.validate(); err != nil {
		return nil, err
	}

	cfg := &options{}
	var err error
	for i := range opts {
		if opts[i] != nil {
			err = errors.Join(err, opts[i].apply(cfg))
		}
	}

	// Bare repository names require an owner or an installation id to
	// select the installation.
	if len(cfg.repos) > 0 && cfg.target.IsZero() && cfg.installID == 0 {
		err = errors.Join(err, errors.New("owner not specified"))
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	t := &Transport{
		identity: identity,
		client:   &Client{baseURL: cfg.baseURL, next: cfg.next, ua: cfg.ua},
		target:   cfg.target,
		repos:    cfg.repos,
		scopes:   cfg.scopes,
		next:     cfg.next,
	}
	if t.next == nil {
		t.next = http.DefaultTransport
	}
	t.installID.Store(cfg.installID)
	return t, nil
}

// AppID returns the GitHub app id.
func (t *Transport) AppID() uint64 {
	return t.identity.AppID
}

// InstallationID returns the installation id. This is zero until an
// installation is configured or resolved on first use.
func (t *Transport) InstallationID() uint64 {
	return t.installID.Load()
}

// Target returns the configured installation target. This is zero when the
// installation is selected by id.
func (t *Transport) Target() Target {
	return t.target
}

// ScopedPermissions returns the permission scopes configured for issued
// tokens. This is not the same as app permissions. Returns nil if no
// scoped permissions are set.
func (t *Transport) ScopedPermissions() map[string]string {
	return maps.Clone(t.scopes)
}

// appScoped reports whether the transport can only authenticate at app
// scope.
func (t *Transport) appScoped() bool {
	return t.installID.Load() == 0 && t.target.IsZero()
}

// Assertion returns a fresh cached assertion, minting a new one when the
// cached assertion is outside its validity window or has less than a
// minute left, so in flight requests do not carry a nearly expired one.
func (t *Transport) Assertion(ctx context.Context) (Assertion, error) {
	if v := t.assertion.Load(); v != nil {
		if assertion, _ := v.(Assertion); assertion.IsFresh() && time.Until(assertion.Exp) > time.Minute {
			return assertion, nil
		}
	}

	assertion, err := NewAssertion(ctx, t.identity)
	if err != nil {
		return Assertion{}, err
	}
	t.assertion.Store(assertion)
	return assertion, nil
}

// resolveInstallationID returns the installation id, resolving the
// configured target on first use.
func (t *Transport) resolveInstallationID(ctx context.Context, assertion Assertion) (uint64, error) {
	if id := t.installID.Load(); id != 0 {
		return id, nil
	}

	id, err := t.client.ResolveInstallation(ctx, t.target, assertion)
	if err != nil {
		return 0, err
	}
	t.installID.Store(id)
	return id, nil
}

// InstallationToken issues a new installation access token, scoped to the
// configured repositories and permissions. This always issues a new token,
// so callers can safely revoke it whenever required.
func (t *Transport) InstallationToken(ctx context.Context) (InstallationToken, error) {
	if t.appScoped() {
		return InstallationToken{}, fmt.Errorf("%w: no installation configured", ErrConfiguration)
	}

	assertion, err := t.Assertion(ctx)
	if err != nil {
		return InstallationToken{}, err
	}

	id, err := t.resolveInstallationID(ctx, assertion)
	if err != nil {
		return InstallationToken{}, err
	}

	token, err := t.client.issueToken(ctx, id, assertion, api.InstallationTokenRequest{
		Repositories: t.repos,
		Permissions:  t.scopes,
	})
	if err != nil {
		return InstallationToken{}, err
	}

	token.Owner = t.target.Owner()
	return token, nil
}

// freshToken returns a cached installation token, issuing a new one when
// the cached token is invalid or absent. Concurrent renewals may issue
// more than one token; all are valid, last stored wins.
func (t *Transport) freshToken(ctx context.Context) (InstallationToken, error) {
	if v := t.token.Load(); v != nil {
		if token, _ := v.(InstallationToken); token.IsValid() {
			return token, nil
		}
	}

	token, err := t.InstallationToken(ctx)
	if err != nil {
		return InstallationToken{}, err
	}
	t.token.Store(token)
	return token, nil
}

// credential selects the credential for a request: an assertion at app
// scope, an installation token otherwise.
func (t *Transport) credential(ctx context.Context) (Credential, error) {
	if t.appScoped() || ctxHasJWTKey(ctx) {
		assertion, err := t.Assertion(ctx)
		if err != nil {
			return nil, err
		}
		return BearerAssertion{Assertion: assertion}, nil
	}

	token, err := t.freshToken(ctx)
	if err != nil {
		return nil, err
	}
	return ScopedToken(token.Token), nil
}

// Verify eagerly checks the transport's configuration against the API:
// the app id and key must be accepted, the configured installation must
// exist and not be suspended, and its granted permissions must cover the
// configured scopes. A transport used without Verify performs the same
// work lazily on first use, minus the permission check, which the API
// then enforces at issuance.
func (t *Transport) Verify(ctx context.Context) error {
	assertion, err := t.Assertion(ctx)
	if err != nil {
		return err
	}

	if _, err := t.client.App(ctx, assertion); err != nil {
		return fmt.Errorf("ghapp: failed to verify app: %w", err)
	}

	if t.appScoped() {
		return nil
	}

	var inst Installation
	if id := t.installID.Load(); id != 0 {
		installations, err := t.client.Installations(ctx, assertion)
		if err != nil {
			return fmt.Errorf("ghapp: failed to verify installation: %w", err)
		}
		idx := -1
		for i := range installations {
			if installations[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("ghapp: failed to verify installation: no installation with id %d", id)
		}
		inst = installations[idx]
	} else {
		inst, err = t.client.Installation(ctx, t.target, assertion)
		if err != nil {
			return fmt.Errorf("ghapp: failed to verify installation: %w", err)
		}
		t.installID.Store(inst.ID)
	}

	if inst.Suspended() {
		return fmt.Errorf("ghapp: failed to verify installation: installation %d is not active", inst.ID)
	}

	// Scoped permissions must be supported by the installation. Permissions
	// on the app itself are not checked, as effective permissions depend on
	// those granted by the installation and the scopes requested.
	if err := api.VerifyScopes(inst.Permissions, t.scopes); err != nil {
		return fmt.Errorf("ghapp: failed to verify installation: %w", err)
	}
	return nil
}

// RoundTrip implements [http.RoundTripper]. The request is never modified;
// a clone carries the injected Authorization header.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("ghapp(RoundTrip): request is nil")
	}

	endpoint := t.client.endpoint()
	if !strings.EqualFold(endpoint.Host, req.URL.Host) {
		return nil,
			fmt.Errorf("ghapp(RoundTrip): host for round tripper(%s) does not match host for request(%s)",
				endpoint.Host, req.URL.Host)
	}

	ctx := req.Context()
	cred, err := t.credential(ctx)
	if err != nil {
		return nil, err
	}

	clone := cloneRequest(req)
	clone.Header.Set(api.AuthzHeader, cred.authzHeaderValue())

	if clone.Header.Get(api.AcceptHeader) == "" {
		clone.Header.Set(api.AcceptHeader, api.AcceptHeaderValue)
	}
	if clone.Header.Get(api.VersionHeader) == "" {
		clone.Header.Set(api.VersionHeader, api.VersionHeaderValue)
	}
	if clone.Header.Get(api.UAHeader) == "" {
		clone.Header.Set(api.UAHeader, t.client.userAgent())
	}

	//nolint:wrapcheck // don't wrap errors returned by underlying round tripper.
	return t.next.RoundTrip(clone)
}

// cloneRequest returns a clone of the provided *http.Request. The clone is
// a shallow copy of the struct with a shallow copy of the Header map.
func cloneRequest(r *http.Request) *http.Request {
	clone := new(http.Request)
	*clone = *r
	clone.Header = maps.Clone(r.Header)
	return clone
}
