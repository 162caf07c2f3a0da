// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

// User represents a GitHub user. This is incomplete!
type User struct {
	Login *string `json:"login,omitempty"`
	ID    *int64  `json:"id,omitempty"`
}

// Repository represents a GitHub repository. This is incomplete!
type Repository struct {
	ID    *int64  `json:"id,omitempty"`
	Owner *User   `json:"owner,omitempty"`
	Name  *string `json:"name,omitempty"`
}

// App represents a GitHub App.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#get-the-authenticated-app
type App struct {
	ID          *int64            `json:"id,omitempty"`
	Slug        *string           `json:"slug,omitempty"`
	Owner       *User             `json:"owner,omitempty"`
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	ExternalURL *string           `json:"external_url,omitempty"`
	Permissions map[string]string `json:"permissions,omitempty"`
	Events      []string          `json:"events,omitempty"`
}

// Installation represents a GitHub App installation.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#get-a-repository-installation-for-the-authenticated-app
type Installation struct {
	ID          *int64            `json:"id,omitempty"`
	AppID       *int64            `json:"app_id,omitempty"`
	AppSlug     *string           `json:"app_slug,omitempty"`
	TargetID    *int64            `json:"target_id,omitempty"`
	TargetType  *string           `json:"target_type,omitempty"`
	Account     *User             `json:"account,omitempty"`
	Permissions map[string]string `json:"permissions,omitempty"`
	SuspendedAt *Timestamp        `json:"suspended_at,omitempty"`
	CreatedAt   *Timestamp        `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp        `json:"updated_at,omitempty"`
}

// InstallationTokenRequest is the payload for an installation token request.
// Empty repository and permission sets request a token with everything the
// installation grants.
//
// https://docs.github.com/en/rest/apps/apps?apiVersion=2022-11-28#create-an-installation-access-token-for-an-app
type InstallationTokenRequest struct {
	Repositories []string          `json:"repositories,omitempty"`
	Permissions  map[string]string `json:"permissions,omitempty"`
}

// InstallationTokenResponse is returned by the API for
// [InstallationTokenRequest].
type InstallationTokenResponse struct {
	Token        string            `json:"token,omitempty"`
	Exp          *Timestamp        `json:"expires_at,omitempty"`
	Permissions  map[string]string `json:"permissions,omitempty"`
	Repositories []*Repository     `json:"repositories,omitempty"`
}

// WebhookPayload is the subset of a webhook event payload this module
// reads. Event specific fields are left to the consumer.
type WebhookPayload struct {
	Installation *Installation `json:"installation,omitempty"`
}

// ErrorResponse is the error payload returned by the API. The message is
// not always present, callers must tolerate an empty one.
type ErrorResponse struct {
	Message          string `json:"message,omitempty"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}
