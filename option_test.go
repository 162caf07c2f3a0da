// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/nortide/ghapp/internal"
	"github.com/nortide/ghapp/internal/api"
)

func TestOptions(t *testing.T) {
	t.Run("all-nils", func(t *testing.T) {
		if Options(nil, nil, WithEndpoint(""), WithRepositories()) != nil {
			t.Errorf("expected nil")
		}
	})

	t.Run("no-options", func(t *testing.T) {
		if Options() != nil {
			t.Errorf("expected nil")
		}
	})

	t.Run("accumulates-errors", func(t *testing.T) {
		o := options{}
		opts := Options(
			WithEndpoint("ftp://api.endpoint.test"),
			WithInstallationID(0),
		)
		err := opts.apply(&o)
		if err == nil {
			t.Fatalf("expected error, got nil")
		}
		// Both option errors must survive joining.
		msg := err.Error()
		if !strings.Contains(msg, "scheme") || !strings.Contains(msg, "installation id") {
			t.Errorf("expected both errors to be reported, got %q", msg)
		}
	})

	t.Run("all-non-nils", func(t *testing.T) {
		urlString := "https://api.endpoint.test"
		urlURL, _ := url.Parse(urlString)
		o := options{}
		expect := options{
			target:    Target{owner: "username"},
			repos:     []string{"bar", "foo"},
			baseURL:   urlURL,
			installID: 99,
			scopes: map[string]string{
				"issues":   "write",
				"contents": "read",
				"metadata": "read",
			},
		}
		opts := Options(
			WithEndpoint(urlString),
			WithOwner("username"),
			WithRepositories("username/foo", "username/bar"),
			WithInstallationID(99),
			WithPermissions("issues:write", "contents:read", "metadata:read"),
		)
		err := opts.apply(&o)
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if o.baseURL.String() != expect.baseURL.String() {
			t.Errorf("expected baseURL=%s, got=%s", expect.baseURL, o.baseURL)
		}
		if o.target != expect.target {
			t.Errorf("expected target=%s, got=%s", expect.target, o.target)
		}
		if !slices.Equal(o.repos, expect.repos) {
			t.Errorf("expected repos=%v, got=%v", expect.repos, o.repos)
		}
		if o.installID != expect.installID {
			t.Errorf("expected installID=%d, got=%d", expect.installID, o.installID)
		}
		if !reflect.DeepEqual(o.scopes, expect.scopes) {
			t.Errorf("expected scopes=%v, got=%v", expect.scopes, o.scopes)
		}
	})
}

func TestWithRepositories(t *testing.T) {
	type testCase struct {
		name   string
		input  []string
		expect []string // must be sorted
		owner  string
		ok     bool
	}
	tt := []testCase{
		{
			name:  "with-single-dot",
			input: []string{"."},
		},
		{
			name:  "with-single-dot-and-username",
			input: []string{"username/."},
		},
		{
			name:  "repo-name-invalid-1",
			input: []string{"username/repo?"},
		},
		{
			name:  "repo-name-invalid-2",
			input: []string{"username/.github foo"},
		},
		{
			name:  "invalid-username-1",
			input: []string{"*username/.github"},
		},
		{
			name:  "invalid-username-2",
			input: []string{"user name/.github"},
		},
		{
			name:  "invalid-username-3",
			input: []string{"user.name/.github"},
		},
		{
			name:  "owner-mismatch",
			input: []string{"user/repo-1", "user/repo-2", "another-user/repo-1"},
		},
		{
			name:   "valid-no-owner",
			input:  []string{"foo", "bar"},
			owner:  "",
			expect: []string{"bar", "foo"},
			ok:     true,
		},
		{
			name:   "valid-no-owner-deduplicate",
			input:  []string{"foo", "bar", "foo"},
			owner:  "",
			expect: []string{"bar", "foo"},
			ok:     true,
		},
		{
			name:   "valid-deduplicate",
			input:  []string{"username/foo", "username/bar", "username/foo"},
			owner:  "username",
			expect: []string{"bar", "foo"},
			ok:     true,
		},
		{
			name:   "valid-mixed-case",
			input:  []string{"Username/Foo", "username/bar"},
			owner:  "username",
			expect: []string{"bar", "foo"},
			ok:     true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			o := options{}
			opt := WithRepositories(tc.input...)
			err := opt.apply(&o)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error %s", err)
				}

				if tc.owner != o.target.Owner() {
					t.Errorf("expected owner=%s, got=%s", tc.owner, o.target.Owner())
				}

				if !slices.Equal(tc.expect, o.repos) {
					t.Errorf("expected repos=%v, got=%v", tc.expect, o.repos)
				}
			} else {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
			}
		})
	}

	t.Run("keeps-configured-owner", func(t *testing.T) {
		o := options{}
		opts := Options(WithOwner("username"), WithRepositories("foo", "bar"))
		if err := opts.apply(&o); err != nil {
			t.Fatalf("unexpected error %s", err)
		}
		if o.target.Owner() != "username" {
			t.Errorf("expected owner=username, got=%s", o.target.Owner())
		}
	})

	t.Run("conflicts-with-configured-owner", func(t *testing.T) {
		o := options{}
		opts := Options(WithOwner("username"), WithRepositories("another/repo"))
		if err := opts.apply(&o); err == nil {
			t.Errorf("expected error, got nil")
		}
	})
}

func TestWithOwner(t *testing.T) {
	type testCase struct {
		name   string
		input  string
		expect string
		ok     bool
	}
	tt := []testCase{
		{
			name:  "with-single-dot",
			input: ".",
		},
		{
			name:  "with-empty-string",
			input: "",
		},
		{
			name:  "with-spaces",
			input: "   ",
		},
		{
			name:  "username-starts-with-dash",
			input: "-username",
		},
		{
			name:  "has-dots",
			input: "user.name",
		},
		{
			name:   "username-ends-with-dash",
			input:  "user-",
			expect: "user-",
			ok:     true,
		},
		{
			name:   "username-has-dashes",
			input:  "user-name-org",
			expect: "user-name-org",
			ok:     true,
		},
		{
			name:   "mixed-case",
			input:  "ROpenSci",
			expect: "ropensci",
			ok:     true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			o := options{}
			opt := WithOwner(tc.input)
			err := opt.apply(&o)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error %s", err)
				}

				if tc.expect != o.target.Owner() {
					t.Errorf("expected owner=%s, got=%s", tc.expect, o.target.Owner())
				}
			} else {
				if err == nil {
					t.Errorf("expected error, got nil")
				}

				if !o.target.IsZero() {
					t.Errorf("on error target must remain zero")
				}
			}
		})
	}

	t.Run("multiple-owners-conflicting", func(t *testing.T) {
		o := options{}
		opts := Options(WithOwner("git"), WithOwner("github"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
	})

	t.Run("multiple-owners-same", func(t *testing.T) {
		o := options{}
		opts := Options(WithOwner("github"), WithOwner("github"))
		err := opts.apply(&o)
		if err != nil {
			t.Errorf("expected no error, got %s", err)
		}
	})
}

func TestWithTarget(t *testing.T) {
	t.Run("zero-target", func(t *testing.T) {
		o := options{}
		err := WithTarget(Target{}).apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
	})

	t.Run("repo-target", func(t *testing.T) {
		target, err := ParseTarget("ropensci/magick")
		if err != nil {
			t.Fatalf("failed to parse target: %s", err)
		}

		o := options{}
		if err := WithTarget(target).apply(&o); err != nil {
			t.Fatalf("unexpected error %s", err)
		}
		if o.target != target {
			t.Errorf("expected target=%s, got=%s", target, o.target)
		}
	})

	t.Run("conflicting-targets", func(t *testing.T) {
		t1, _ := ParseTarget("ropensci/magick")
		t2, _ := ParseTarget("ropensci/av")

		o := options{}
		err := Options(WithTarget(t1), WithTarget(t2)).apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
	})

	t.Run("same-target-twice", func(t *testing.T) {
		t1, _ := ParseTarget("ropensci/magick")
		t2, _ := ParseTarget("ropensci/magick")

		o := options{}
		err := Options(WithTarget(t1), WithTarget(t2)).apply(&o)
		if err != nil {
			t.Errorf("expected no error, got %s", err)
		}
	})
}

func TestWithEndpoint(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		opts := Options(WithEndpoint(""))
		if opts != nil {
			t.Errorf("on empty endpoint options should return nil")
		}
	})
	t.Run("invalid-protocol", func(t *testing.T) {
		o := options{}
		opts := Options(WithEndpoint("ftp://endpoint.api-endpoint-golang.test"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
		if o.baseURL != nil {
			t.Errorf("baseURL should not be modified")
		}
	})
	t.Run("url-has-fragments", func(t *testing.T) {
		o := options{}
		opts := Options(WithEndpoint("https://api-endpoint-golang.test/endpoint#foo"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
		if o.baseURL != nil {
			t.Errorf("baseURL should not be modified")
		}
	})

	t.Run("url-has-queries", func(t *testing.T) {
		o := options{}
		opts := Options(WithEndpoint("https://api-endpoint-golang.test/endpoint?foo=bar"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
		if o.baseURL != nil {
			t.Errorf("baseURL should not be modified")
		}
	})
	t.Run("url-invalid", func(t *testing.T) {
		o := options{}
		opts := Options(WithEndpoint("https://url is invalid/"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
		if o.baseURL != nil {
			t.Errorf("baseURL should not be modified")
		}
	})

	t.Run("url-valid-default", func(t *testing.T) {
		o := options{}
		opts := Options(WithEndpoint(api.DefaultEndpoint))
		err := opts.apply(&o)
		if err != nil {
			t.Errorf("expected no error, got %s", err)
		}
		if o.baseURL.String() != api.DefaultEndpoint {
			t.Errorf("baseURL should be %s, got %s", api.DefaultEndpoint, o.baseURL)
		}
	})
}

func TestWithPermissions(t *testing.T) {
	t.Run("invalid-scope-levels", func(t *testing.T) {
		o := options{}
		opts := Options(WithPermissions("issues:read", "contents:foo"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected an error, got nil")
		}
		if o.scopes != nil {
			t.Errorf("scopes should be nil: %v", o.scopes)
		}
	})
	t.Run("invalid-scope-format", func(t *testing.T) {
		o := options{}
		opts := Options(WithPermissions("issues-read"))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected an error, got nil")
		}
		if o.scopes != nil {
			t.Errorf("scopes should be nil: %v", o.scopes)
		}
	})
	t.Run("nil-scopes", func(t *testing.T) {
		opts := Options(WithPermissions())
		if opts != nil {
			t.Errorf("expected nil options when no scopes are specified")
		}
	})
	t.Run("equals-separator", func(t *testing.T) {
		o := options{}
		opts := Options(WithPermissions("issues=write", "contents=read"))
		err := opts.apply(&o)
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
		expect := map[string]string{"issues": "write", "contents": "read"}
		if !reflect.DeepEqual(o.scopes, expect) {
			t.Errorf("expected scopes=%v, got=%v", expect, o.scopes)
		}
	})
	t.Run("mixed-case", func(t *testing.T) {
		o := options{}
		opts := Options(WithPermissions("Issues:Write"))
		err := opts.apply(&o)
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
		if o.scopes["issues"] != "write" {
			t.Errorf("expected issues:write, got=%v", o.scopes)
		}
	})
}

func TestWithRoundTripper(t *testing.T) {
	t.Run("non-nil", func(t *testing.T) {
		o := options{}
		opts := Options(WithRoundTripper(
			internal.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
				t.Logf("request=%v", r)
				return http.DefaultTransport.RoundTrip(r)
			})))
		err := opts.apply(&o)
		if err != nil {
			t.Errorf("expected no error, got %s", err)
		}

		if o.next == nil {
			t.Errorf("next round tripper should be non nil")
		}
	})
	t.Run("nil-round-tripper", func(t *testing.T) {
		opts := Options(WithRoundTripper(nil))
		if opts != nil {
			t.Errorf("expected nil options when no round tripper is specified")
		}
	})
}

func TestWithUserAgent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if WithUserAgent("") != nil {
			t.Errorf("expected nil options when user agent is empty")
		}
	})
	t.Run("whitespace", func(t *testing.T) {
		if WithUserAgent("   ") != nil {
			t.Errorf("expected nil options when user agent is blank")
		}
	})
	t.Run("custom", func(t *testing.T) {
		o := options{}
		if err := WithUserAgent("unit-test/1").apply(&o); err != nil {
			t.Errorf("expected no error, got %s", err)
		}
		if o.ua != "unit-test/1" {
			t.Errorf("expected ua=unit-test/1, got=%s", o.ua)
		}
	})
}

func TestWithInstallationID(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		o := options{}
		opts := Options(WithInstallationID(0))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected an error, got nil")
		}
	})

	t.Run("multiple-conflicting-ids", func(t *testing.T) {
		o := options{}
		opts := Options(WithInstallationID(99), WithInstallationID(9))
		err := opts.apply(&o)
		if err == nil {
			t.Errorf("expected an error, got nil")
		}
	})

	t.Run("multiple-same", func(t *testing.T) {
		o := options{}
		opts := Options(WithInstallationID(99), WithInstallationID(99))
		err := opts.apply(&o)
		if err != nil {
			t.Errorf("expected no error, got %s", err)
		}

		if o.installID != 99 {
			t.Errorf("expected installation id to be 99, got %d", o.installID)
		}
	})
}
