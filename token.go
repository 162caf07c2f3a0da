// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"crypto"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	_ slog.LogValuer = (*InstallationToken)(nil)
)

// InstallationToken is an installation access token from GitHub, the final
// product of the credential exchange. The token value is a secret.
type InstallationToken struct {
	// Installation access token. Typically starts with "ghs_".
	Token string `json:"token" yaml:"token"`

	// GitHub API endpoint the token was issued by. This is also used for
	// token revocation.
	Server string `json:"server,omitempty" yaml:"server,omitempty"`

	// GitHub app ID.
	AppID uint64 `json:"app_id,omitempty" yaml:"app_id,omitempty"`

	// Installation ID the token is scoped to.
	InstallationID uint64 `json:"installation_id,omitempty" yaml:"installation_id,omitempty"`

	// Token exp time.
	Exp time.Time `json:"exp,omitempty" yaml:"exp,omitempty"`

	// Installation owner.
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// Repositories which can be accessed with the token. This may be empty
	// if a scoped token was not requested. In such cases, the token has
	// access to all repositories accessible by the installation.
	Repositories []string `json:"repositories,omitempty" yaml:"repositories,omitempty"`

	// Permissions available to the token. This may be empty if scoped
	// permissions were not requested. In such cases the token has all
	// permissions available to the installation.
	Permissions map[string]string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// LogValue implements [log/slog.LogValuer].
func (t *InstallationToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server", t.Server),
		slog.Uint64("app_id", t.AppID),
		slog.Uint64("installation_id", t.InstallationID),
		slog.Any("repositories", t.Repositories),
		slog.String("token", "REDACTED"),
		slog.Time("exp", t.Exp),
		slog.Any("permissions", t.Permissions),
	)
}

// IsValid checks if [InstallationToken] is valid for at least 60 seconds.
func (t *InstallationToken) IsValid() bool {
	return t.Token != "" && t.Exp.After(time.Now().Add(time.Minute))
}

// Revoke revokes the installation access token. A token cannot be un-revoked;
// mint a new one if required.
func (t *InstallationToken) Revoke(ctx context.Context) error {
	return t.revoke(ctx, nil)
}

// revoke is the internal version of Revoke which supports a custom round
// tripper for testing.
func (t *InstallationToken) revoke(ctx context.Context, rt http.RoundTripper) error {
	if !t.IsValid() {
		return fmt.Errorf("ghapp(token): cannot revoke already invalid token")
	}

	client, err := NewClient(WithEndpoint(t.Server), WithRoundTripper(rt))
	if err != nil {
		return fmt.Errorf("ghapp(token): failed to revoke token: %w", err)
	}

	if err := client.RevokeToken(ctx, ScopedToken(t.Token)); err != nil {
		return err
	}

	// Successful revocation, indicate token is no longer valid.
	t.Exp = time.Now()
	return nil
}

// NewInstallationToken obtains a new installation access token for the app.
// This takes the same options as [Transport] and is a convenience over
// building one manually.
func NewInstallationToken(ctx context.Context, appid uint64, signer crypto.Signer, opts ...Option) (InstallationToken, error) {
	t, err := NewTransport(ctx, appid, signer, opts...)
	if err != nil {
		return InstallationToken{}, err
	}
	return t.InstallationToken(ctx)
}
