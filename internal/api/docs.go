// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

// Package api holds types and constants to serialize and deserialize
// requests to and from the GitHub REST API.
//
// Types cover only the app-authentication endpoints this module needs and
// should be considered incomplete. Use [github.com/google/go-github/github]
// or [github.com/shurcooL/githubv4] to access the rest of the API with
// [github.com/nortide/ghapp.Transport] for authentication.
package api
