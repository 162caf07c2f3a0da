// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nortide/ghapp/internal/api"
)

// Client performs the credential exchange against the GitHub REST API(v3).
//
// Client is stateless. It holds no credentials, caches nothing and never
// retries; every call makes its authorization explicit by taking the
// assertion or token it should use, and every remote failure surfaces as a
// typed error. The zero value uses [api.DefaultEndpoint] and
// [http.DefaultTransport]; use [NewClient] to configure either.
//
// Client imposes no timeouts of its own. Deadlines come from the caller's
// context and the configured round tripper.
type Client struct {
	baseURL *url.URL
	next    http.RoundTripper
	ua      string
}

// NewClient returns a [Client] with the given options applied. Only
// [WithEndpoint], [WithRoundTripper] and [WithUserAgent] apply to a client;
// installation options belong to [Transport] and are rejected here.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &options{}
	var err error
	for i := range opts {
		if opts[i] != nil {
			err = errors.Join(err, opts[i].apply(cfg))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if cfg.installID != 0 || !cfg.target.IsZero() || len(cfg.repos) > 0 || len(cfg.scopes) > 0 {
		return nil, fmt.Errorf("%w: installation options are only valid for Transport", ErrConfiguration)
	}

	return &Client{baseURL: cfg.baseURL, next: cfg.next, ua: cfg.ua}, nil
}

// endpoint returns the configured REST API base URL or the default.
func (c *Client) endpoint() *url.URL {
	if c.baseURL != nil {
		return c.baseURL
	}
	u, _ := url.Parse(api.DefaultEndpoint)
	return u
}

// transport returns the configured round tripper or the default.
func (c *Client) transport() http.RoundTripper {
	if c.next != nil {
		return c.next
	}
	return http.DefaultTransport
}

func (c *Client) userAgent() string {
	if c.ua != "" {
		return c.ua
	}
	return api.UAHeaderValue
}

// url joins path segments onto the API base URL.
func (c *Client) url(segments ...string) *url.URL {
	return c.endpoint().JoinPath(segments...)
}

// do performs one authenticated request. This is the single place requests
// are built and credentials attached; every API operation goes through it.
// The response body is fully read and returned along with the response so
// callers never deal with partially consumed bodies.
func (c *Client) do(ctx context.Context, method string, u *url.URL, body []byte, cred Credential) (*http.Response, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	authz := ""
	if cred != nil {
		authz = cred.authzHeaderValue()
	}
	if authz == "" {
		return nil, nil, fmt.Errorf("%w: request credential carries no material", ErrConfiguration)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	r, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	r.Header.Set(api.AcceptHeader, api.AcceptHeaderValue)
	r.Header.Set(api.VersionHeader, api.VersionHeaderValue)
	r.Header.Set(api.UAHeader, c.userAgent())
	r.Header.Set(api.AuthzHeader, authz)
	if body != nil {
		r.Header.Set(api.ContentTypeHeader, api.ContentTypeJSON)
	}

	client := http.Client{Transport: c.transport()}
	resp, err := client.Do(r)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, data, nil
}

// remoteError summarizes a non success response. GitHub API error response
// JSON is inconsistent, so fall back to bare status when the body does not
// carry a message. The status is always included so callers can assert on
// response codes.
func remoteError(data []byte, status string) error {
	errResp := &api.ErrorResponse{}
	if err := json.Unmarshal(data, errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("%s(%s)", errResp.Message, status)
	}
	return fmt.Errorf("%s", status)
}

// IssueToken exchanges a fresh assertion for an installation access token
// scoped to the given installation, with everything the installation
// grants. Token scoping by repository or permission is a [Transport]
// concern.
//
// A stale assertion fails fast with [ErrAssertionExpired] before any
// network I/O. Remote failures wrap [ErrTokenIssuance].
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#create-an-installation-access-token-for-an-app
func (c *Client) IssueToken(ctx context.Context, installationID uint64, assertion Assertion) (InstallationToken, error) {
	return c.issueToken(ctx, installationID, assertion, api.InstallationTokenRequest{})
}

func (c *Client) issueToken(ctx context.Context, installationID uint64, assertion Assertion, req api.InstallationTokenRequest) (InstallationToken, error) {
	if installationID == 0 {
		return InstallationToken{}, fmt.Errorf("%w: installation id cannot be zero", ErrConfiguration)
	}

	if !assertion.IsFresh() {
		return InstallationToken{}, ErrAssertionExpired
	}

	buf, err := json.Marshal(req)
	if err != nil {
		return InstallationToken{}, fmt.Errorf("%w: failed to marshal token request: %w", ErrTokenIssuance, err)
	}

	u := c.url("app", "installations", strconv.FormatUint(installationID, 10), "access_tokens")
	resp, data, err := c.do(ctx, http.MethodPost, u, buf, BearerAssertion{Assertion: assertion})
	if err != nil {
		return InstallationToken{}, fmt.Errorf("%w: %w", ErrTokenIssuance, err)
	}

	if resp.StatusCode != http.StatusCreated {
		return InstallationToken{}, fmt.Errorf("%w: %w", ErrTokenIssuance, remoteError(data, resp.Status))
	}

	tokenResp := api.InstallationTokenResponse{}
	if err := json.Unmarshal(data, &tokenResp); err != nil {
		return InstallationToken{}, fmt.Errorf("%w: failed to unmarshal response: %w", ErrTokenIssuance, err)
	}

	if tokenResp.Token == "" || tokenResp.Exp == nil {
		return InstallationToken{}, fmt.Errorf("%w: response is missing token or expiry", ErrTokenIssuance)
	}

	token := InstallationToken{
		Server:         c.endpoint().String(),
		AppID:          assertion.AppID,
		InstallationID: installationID,
		Token:          tokenResp.Token,
		Exp:            tokenResp.Exp.Time,
		Permissions:    tokenResp.Permissions,
	}

	if tokenResp.Repositories != nil {
		token.Repositories = make([]string, 0, len(tokenResp.Repositories))
		for _, item := range tokenResp.Repositories {
			if item != nil && item.Name != nil {
				token.Repositories = append(token.Repositories, *item.Name)
			}
		}
	}

	return token, nil
}

// Token resolves the installation for target and exchanges the assertion
// for an installation access token, composing [Client.ResolveInstallation]
// and [Client.IssueToken]. Issuance is never attempted when resolution
// fails.
func (c *Client) Token(ctx context.Context, target Target, assertion Assertion) (InstallationToken, error) {
	id, err := c.ResolveInstallation(ctx, target, assertion)
	if err != nil {
		return InstallationToken{}, err
	}

	token, err := c.issueToken(ctx, id, assertion, api.InstallationTokenRequest{})
	if err != nil {
		return InstallationToken{}, err
	}

	token.Owner = target.Owner()
	return token, nil
}

// RevokeToken revokes an installation access token. This is the one
// exchange operation authenticated by the token itself rather than an
// assertion. Exactly one request is made; the API returns 204 on success.
//
// https://docs.github.com/en/rest/apps/installations?apiVersion=2022-11-28#revoke-an-installation-access-token
func (c *Client) RevokeToken(ctx context.Context, token ScopedToken) error {
	resp, data, err := c.do(ctx, http.MethodDelete, c.url("installation", "token"), nil, token)
	if err != nil {
		return fmt.Errorf("ghapp(token): failed to revoke token: %w", err)
	}

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("ghapp(token): failed to revoke token: %w", remoteError(data, resp.Status))
	}
	return nil
}
