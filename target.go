// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	repoNameRegExp = regexp.MustCompile("^(((.)[a-z-0-9-.]+)|([a-z0-9-]([a-z0-9-.]+)?))$")
	userNameRegExp = regexp.MustCompile("^([a-z0-9]([a-z0-9-]+)?)$")
)

// Target selects the installation to exchange credentials for. It is either
// an owner (user or organization account) or a single repository, never
// both at once. Build it with [OwnerTarget], [RepoTarget] or, at input
// boundaries, [ParseTarget]; a zero Target is not valid.
//
// Names are normalized to lowercase on construction.
type Target struct {
	owner string
	repo  string
}

// OwnerTarget returns a Target selecting the installation on a user or
// organization account. Invalid owner names fail with [ErrTarget].
func OwnerTarget(owner string) (Target, error) {
	owner = strings.ToLower(owner)
	if !userNameRegExp.MatchString(owner) {
		return Target{}, fmt.Errorf("%w: invalid owner: %q", ErrTarget, owner)
	}
	return Target{owner: owner}, nil
}

// RepoTarget returns a Target selecting the installation on a single
// repository. Invalid owner or repository names fail with [ErrTarget].
func RepoTarget(owner, repo string) (Target, error) {
	owner = strings.ToLower(owner)
	repo = strings.ToLower(repo)
	if !userNameRegExp.MatchString(owner) {
		return Target{}, fmt.Errorf("%w: invalid owner: %q", ErrTarget, owner)
	}
	if !repoNameRegExp.MatchString(repo) {
		return Target{}, fmt.Errorf("%w: invalid repository: %q", ErrTarget, repo)
	}
	return Target{owner: owner, repo: repo}, nil
}

// ParseTarget parses "owner" or "owner/repo" into a [Target]. This is the
// single place installation target strings are interpreted; malformed input
// fails with [ErrTarget].
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, fmt.Errorf("%w: target is empty", ErrTarget)
	}

	owner, repo, ok := strings.Cut(s, "/")
	if !ok {
		return OwnerTarget(owner)
	}

	if strings.Contains(repo, "/") {
		return Target{}, fmt.Errorf("%w: %q is not in owner or owner/repo form", ErrTarget, s)
	}
	return RepoTarget(owner, repo)
}

// Owner returns the owner name.
func (t Target) Owner() string {
	return t.owner
}

// Repo returns the repository name, empty for owner targets.
func (t Target) Repo() string {
	return t.repo
}

// HasRepo reports whether the target selects a repository installation.
func (t Target) HasRepo() bool {
	return t.repo != ""
}

// IsZero reports whether the target is the zero value.
func (t Target) IsZero() bool {
	return t.owner == "" && t.repo == ""
}

// String returns "owner" or "owner/repo".
func (t Target) String() string {
	if t.repo == "" {
		return t.owner
	}
	return t.owner + "/" + t.repo
}
