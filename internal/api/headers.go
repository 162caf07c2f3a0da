// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

// Common headers used by this module.
const (
	VersionHeader      = "X-GitHub-Api-Version"
	VersionHeaderValue = "2022-11-28"
	AcceptHeader       = "Accept"
	AcceptHeaderValue  = "application/vnd.github.v3+json"
	UAHeader           = "User-Agent"
	UAHeaderValue      = "github.com/nortide/ghapp/v0"
	AuthzHeader        = "Authorization"
	ContentTypeHeader  = "Content-Type"
	ContentTypeJSON    = "application/json"
)

// GitHub webhook headers in canonical form.
const (
	SignatureSHA256Header        = "X-Hub-Signature-256"
	EventHeader                  = "X-GitHub-Event"
	HookIDHeader                 = "X-GitHub-Hook-ID"
	DeliveryHeader               = "X-GitHub-Delivery"
	InstallationTargetIDHeader   = "X-GitHub-Hook-Installation-Target-ID"
	InstallationTargetTypeHeader = "X-GitHub-Hook-Installation-Target-Type"
)
