// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nortide/ghapp/internal/api"
)

// Installation listing is paginated. Pages are followed until a short page
// or the page cap, whichever comes first.
const (
	listPageSize = 100
	maxListPages = 10
)

// Installation is app installation metadata, a binding between the app and
// an account or repository granting it scoped access.
type Installation struct {
	// Installation ID. This is what tokens are issued against.
	ID uint64 `json:"id" yaml:"id"`

	// GitHub app ID the installation belongs to.
	AppID uint64 `json:"app_id,omitempty" yaml:"app_id,omitempty"`

	// Account the app is installed on.
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// OwnerType is "User" or "Organization".
	OwnerType string `json:"owner_type,omitempty" yaml:"owner_type,omitempty"`

	// Permissions granted to the installation.
	Permissions map[string]string `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	// SuspendedAt is when the installation was suspended. Zero when the
	// installation is active.
	SuspendedAt time.Time `json:"suspended_at,omitempty" yaml:"suspended_at,omitempty"`

	// CreatedAt is when the app was installed.
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`

	// UpdatedAt is when the installation last changed.
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Suspended reports whether the installation is currently suspended.
// Suspended installations cannot be issued tokens.
func (i Installation) Suspended() bool {
	return !i.SuspendedAt.IsZero() && i.SuspendedAt.Before(time.Now())
}

func installationFromAPI(v *api.Installation) Installation {
	inst := Installation{Permissions: v.Permissions}
	if v.ID != nil {
		inst.ID = uint64(*v.ID)
	}
	if v.AppID != nil {
		inst.AppID = uint64(*v.AppID)
	}
	if v.Account != nil && v.Account.Login != nil {
		inst.Owner = *v.Account.Login
	}
	if v.TargetType != nil {
		inst.OwnerType = *v.TargetType
	}
	if v.SuspendedAt != nil {
		inst.SuspendedAt = v.SuspendedAt.Time
	}
	if v.CreatedAt != nil {
		inst.CreatedAt = v.CreatedAt.Time
	}
	if v.UpdatedAt != nil {
		inst.UpdatedAt = v.UpdatedAt.Time
	}
	return inst
}

// installationURL maps the target variant to its resolution endpoint.
// Owner targets resolve via the user installation endpoint, which serves
// both user and organization accounts.
func (c *Client) installationURL(target Target) *url.URL {
	if target.HasRepo() {
		return c.url("repos", target.Owner(), target.Repo(), "installation")
	}
	return c.url("users", target.Owner(), "installation")
}

// fetchInstallation gets the installation selected by u, authenticated at
// app scope. Failures wrap [ErrResolution].
func (c *Client) fetchInstallation(ctx context.Context, u *url.URL, assertion Assertion) (Installation, error) {
	if !assertion.IsFresh() {
		return Installation{}, ErrAssertionExpired
	}

	resp, data, err := c.do(ctx, http.MethodGet, u, nil, BearerAssertion{Assertion: assertion})
	if err != nil {
		return Installation{}, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Installation{}, fmt.Errorf("%w: %w", ErrResolution, remoteError(data, resp.Status))
	}

	v := api.Installation{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Installation{}, fmt.Errorf("%w: failed to unmarshal response: %w", ErrResolution, err)
	}

	if v.ID == nil {
		return Installation{}, fmt.Errorf("%w: response is missing installation id", ErrResolution)
	}
	return installationFromAPI(&v), nil
}

// ResolveInstallation resolves the installation id for a target. The id is
// fetched fresh on every call and never cached; tokens are issued against
// it with [Client.IssueToken].
//
// An owner target resolves via "users/{owner}/installation", a repository
// target via "repos/{owner}/{repo}/installation". A target with no
// matching installation or a rejected assertion fails with
// [ErrResolution]; a suspended installation resolves but is refused, as it
// cannot be issued tokens.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#get-a-user-installation-for-the-authenticated-app
func (c *Client) ResolveInstallation(ctx context.Context, target Target, assertion Assertion) (uint64, error) {
	if target.IsZero() {
		return 0, fmt.Errorf("%w: no target specified", ErrTarget)
	}

	inst, err := c.fetchInstallation(ctx, c.installationURL(target), assertion)
	if err != nil {
		return 0, err
	}

	if inst.Suspended() {
		return 0, fmt.Errorf("%w: installation %d is not active", ErrResolution, inst.ID)
	}
	return inst.ID, nil
}

// Installation returns full installation metadata for a target. Unlike
// [Client.ResolveInstallation] this does not refuse suspended
// installations; inspect [Installation.Suspended].
func (c *Client) Installation(ctx context.Context, target Target, assertion Assertion) (Installation, error) {
	if target.IsZero() {
		return Installation{}, fmt.Errorf("%w: no target specified", ErrTarget)
	}
	return c.fetchInstallation(ctx, c.installationURL(target), assertion)
}

// Installations lists all installations of the app. Results are paginated;
// pages are fetched until a short page or the page cap, so very large
// fleets are truncated rather than looped over forever.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#list-installations-for-the-authenticated-app
func (c *Client) Installations(ctx context.Context, assertion Assertion) ([]Installation, error) {
	if !assertion.IsFresh() {
		return nil, ErrAssertionExpired
	}

	all := make([]Installation, 0, listPageSize)
	for page := 1; page <= maxListPages; page++ {
		u := c.url("app", "installations")
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(listPageSize))
		q.Set("page", strconv.Itoa(page))
		u.RawQuery = q.Encode()

		resp, data, err := c.do(ctx, http.MethodGet, u, nil, BearerAssertion{Assertion: assertion})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResolution, err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %w", ErrResolution, remoteError(data, resp.Status))
		}

		var items []*api.Installation
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal response: %w", ErrResolution, err)
		}

		for _, item := range items {
			if item != nil {
				all = append(all, installationFromAPI(item))
			}
		}

		if len(items) < listPageSize {
			break
		}
	}
	return all, nil
}

// DeleteInstallation uninstalls the app from the account the installation
// is bound to. This cannot be undone and revokes all tokens issued for the
// installation. Exactly one request is made; the API returns 204 on
// success.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#delete-an-installation-for-the-authenticated-app
func (c *Client) DeleteInstallation(ctx context.Context, installationID uint64, assertion Assertion) error {
	if installationID == 0 {
		return fmt.Errorf("%w: installation id cannot be zero", ErrConfiguration)
	}

	if !assertion.IsFresh() {
		return ErrAssertionExpired
	}

	u := c.url("app", "installations", strconv.FormatUint(installationID, 10))
	resp, data, err := c.do(ctx, http.MethodDelete, u, nil, BearerAssertion{Assertion: assertion})
	if err != nil {
		return fmt.Errorf("ghapp(installation): failed to delete installation %d: %w", installationID, err)
	}

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("ghapp(installation): failed to delete installation %d: %w",
			installationID, remoteError(data, resp.Status))
	}
	return nil
}
