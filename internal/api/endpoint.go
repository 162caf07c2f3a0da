// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

// DefaultEndpoint is the default GitHub REST API endpoint.
const DefaultEndpoint = "https://api.github.com/"
