// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// options is the shared configuration surface for [Client] and [Transport].
// Client rejects installation scoped fields; Transport uses all of them.
type options struct {
	baseURL   *url.URL          // REST API v3 base URL
	next      http.RoundTripper // next round tripper
	ua        string            // user agent
	target    Target            // installation target
	installID uint64            // installation id
	repos     []string          // repository names to scope tokens to
	scopes    map[string]string // scoped permissions
}

// Options takes a variadic slice of [Option] and returns a single [Option]
// which includes all the given options. This is useful for sharing presets.
// If conflicting options are specified, last one specified wins. As a
// special case, if no options are specified or all specified options are
// nil, this will return nil.
func Options(opts ...Option) Option {
	nils := 0
	for i := range opts {
		if opts[i] == nil {
			nils++
		}
	}
	if len(opts) == nils {
		return nil
	}

	return &funcOption{
		f: func(o *options) error {
			var err error
			for i := range opts {
				if opts[i] != nil {
					err = errors.Join(err, opts[i].apply(o))
				}
			}
			return err
		},
	}
}

// Option is a configuration option for [Client] and [Transport].
type Option interface {
	apply(o *options) error
}

// funcOption wraps a function applied to options during initial
// configuration. It implements the [Option] interface.
type funcOption struct {
	f func(*options) error
}

func (opt *funcOption) apply(o *options) error {
	return opt.f(o)
}

var permissionRegEx = regexp.MustCompile("^[a-z]([a-z_]+[a-z])?[:|=](read|write|admin)$")

// WithEndpoint configures a custom REST API(v3) endpoint. This MUST be a
// REST(v3) endpoint even though the client of the issued tokens might be
// using the GitHub GraphQL API.
//
// When not specified or empty, "https://api.github.com/" is used.
func WithEndpoint(endpoint string) Option {
	if endpoint == "" {
		return nil
	}
	return &funcOption{
		f: func(o *options) error {
			u, err := url.Parse(endpoint)
			if err != nil {
				return fmt.Errorf("invalid endpoint url: %w", err)
			}
			switch u.Scheme {
			case "http", "https":
			default:
				return fmt.Errorf("invalid url scheme : %s (%s)", u.Scheme, endpoint)
			}

			if u.Fragment != "" || u.RawQuery != "" {
				return fmt.Errorf("endpoint cannot have fragments or queries: %s", endpoint)
			}

			o.baseURL = u
			return nil
		},
	}
}

// WithRoundTripper configures the underlying [http.RoundTripper] used for
// API requests. This can be used to further customize headers, add logging
// or retries.
func WithRoundTripper(next http.RoundTripper) Option {
	if next == nil {
		return nil
	}
	return &funcOption{
		f: func(o *options) error {
			o.next = next
			return nil
		},
	}
}

// WithUserAgent configures the user agent header used for API requests.
func WithUserAgent(ua string) Option {
	if strings.TrimSpace(ua) == "" {
		return nil
	}
	return &funcOption{
		f: func(o *options) error {
			o.ua = ua
			return nil
		},
	}
}

// WithTarget configures the installation target, built with [OwnerTarget],
// [RepoTarget] or [ParseTarget].
func WithTarget(target Target) Option {
	return &funcOption{
		f: func(o *options) error {
			if target.IsZero() {
				return errors.New("target is empty")
			}

			if !o.target.IsZero() && o.target != target {
				return fmt.Errorf("target is already configured(%s): %s", o.target, target)
			}

			o.target = target
			return nil
		},
	}
}

// WithOwner configures the installation owner to use. This is a
// convenience over [WithTarget] with an [OwnerTarget].
func WithOwner(username string) Option {
	return &funcOption{
		f: func(o *options) error {
			target, err := OwnerTarget(username)
			if err != nil {
				return fmt.Errorf("invalid username: %s", username)
			}

			// Owner may already have been derived from repositories;
			// ensure they do not conflict.
			if !o.target.IsZero() && o.target.Owner() != target.Owner() {
				return fmt.Errorf("owner is already configured(%s): %s", o.target.Owner(), username)
			}

			if o.target.IsZero() {
				o.target = target
			}
			return nil
		},
	}
}

// WithInstallationID configures the installation id to use directly,
// skipping target resolution.
//
// This is useful to access all repositories available to an installation
// without naming them individually, or when building a [Transport] from
// data provided by a [Webhook].
func WithInstallationID(id uint64) Option {
	return &funcOption{
		f: func(o *options) error {
			if id == 0 {
				return fmt.Errorf("installation id cannot be zero")
			}

			if o.installID != 0 && o.installID != id {
				return fmt.Errorf("installation id is already configured(%d): %d", o.installID, id)
			}

			o.installID = id
			return nil
		},
	}
}

// WithRepositories configures repositories to scope installation tokens
// to. Unlike other installation options, this can be used multiple times.
// Repositories may be bare names or "owner/repo" pairs; all pairs must
// share a single owner, which also selects the installation when no
// target is configured.
func WithRepositories(repos ...string) Option {
	if len(repos) == 0 {
		return nil
	}
	return &funcOption{
		f: func(o *options) error {
			refOwner := o.target.Owner()
			invalid := make([]string, 0, len(repos))
			for _, item := range repos {
				item = strings.ToLower(item)
				username, repo, ok := strings.Cut(item, "/")
				// Repository is in owner/repo form.
				if ok {
					if !userNameRegExp.MatchString(username) {
						invalid = append(invalid, item)
						continue
					}

					if refOwner == "" {
						refOwner = username
					}

					// Repositories must be under a single installation.
					if username != refOwner {
						return fmt.Errorf("repositories from multiple owners specified: %v", repos)
					}

					item = repo
				}

				if !repoNameRegExp.MatchString(item) {
					invalid = append(invalid, item)
				} else {
					o.repos = append(o.repos, item)
				}
			}

			if len(invalid) > 0 {
				return fmt.Errorf("invalid repositories specified: %v", invalid)
			}

			// Sort and remove duplicates.
			slices.Sort(o.repos)
			o.repos = slices.Clip(slices.Compact(o.repos))

			// Derived owner selects the installation when no target is set.
			if o.target.IsZero() && refOwner != "" {
				o.target = Target{owner: refOwner}
			}
			return nil
		},
	}
}

// WithPermissions configures permission scopes for issued tokens. This is
// useful when the app has a broader set of permissions and a scoped access
// token is required.
//
// Permissions MUST be specified in <scope>:<access> or <scope>=<access>
// format, where scope is a permission scope like "issues" and access is
// one of "read", "write" or "admin".
//
// For example, permission to write issues and pull requests is specified
// as,
//
//	ghapp.WithPermissions("issues:write", "pull_requests:write")
func WithPermissions(permissions ...string) Option {
	if len(permissions) == 0 {
		return nil
	}
	return &funcOption{
		f: func(o *options) error {
			m := make(map[string]string, len(permissions))
			invalid := make([]string, 0, len(permissions))
			for _, item := range permissions {
				item = strings.ToLower(item)
				if permissionRegEx.MatchString(item) {
					item = strings.ReplaceAll(item, "=", ":")

					// The regex already validates <scope>:<level> form.
					scope, level, _ := strings.Cut(item, ":")
					m[scope] = level
				} else {
					invalid = append(invalid, item)
				}
			}
			if len(invalid) != 0 {
				return fmt.Errorf("invalid permissions: %v", invalid)
			}
			o.scopes = m
			return nil
		},
	}
}
