// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nortide/ghapp/internal/api"
)

// App is GitHub app metadata for the authenticated app.
type App struct {
	// Numeric app ID.
	ID uint64 `json:"id" yaml:"id"`

	// URL friendly app name.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	// Display name of the app.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Account owning the app.
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// Description of the app.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Permissions the app requests on installations.
	Permissions map[string]string `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	// Webhook events the app subscribes to.
	Events []string `json:"events,omitempty" yaml:"events,omitempty"`
}

// BotUsername returns the GitHub username of the app's bot user, used to
// attribute activity performed with installation tokens.
func (a App) BotUsername() string {
	if a.Slug == "" {
		return ""
	}
	return a.Slug + "[bot]"
}

// App fetches metadata of the app the assertion was minted for. As the
// request only needs a valid assertion, this doubles as a cheap way to
// verify an app id and key pair.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#get-the-authenticated-app
func (c *Client) App(ctx context.Context, assertion Assertion) (App, error) {
	if !assertion.IsFresh() {
		return App{}, ErrAssertionExpired
	}

	resp, data, err := c.do(ctx, http.MethodGet, c.url("app"), nil, BearerAssertion{Assertion: assertion})
	if err != nil {
		return App{}, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return App{}, fmt.Errorf("%w: invalid app id or credentials: %w", ErrResolution, remoteError(data, resp.Status))
	default:
		return App{}, fmt.Errorf("%w: %w", ErrResolution, remoteError(data, resp.Status))
	}

	v := api.App{}
	if err := json.Unmarshal(data, &v); err != nil {
		return App{}, fmt.Errorf("%w: failed to unmarshal response: %w", ErrResolution, err)
	}

	app := App{
		Name:        deref(v.Name),
		Slug:        deref(v.Slug),
		Description: deref(v.Description),
		Permissions: v.Permissions,
		Events:      v.Events,
	}
	if v.ID != nil {
		app.ID = uint64(*v.ID)
	}
	if v.Owner != nil && v.Owner.Login != nil {
		app.Owner = *v.Owner.Login
	}
	return app, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
