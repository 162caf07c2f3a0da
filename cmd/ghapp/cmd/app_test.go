// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"strings"
	"testing"
)

// Cannot run in parallel, commands share rootCmd state.
func TestRunApp(t *testing.T) {
	t.Run("text-output", func(t *testing.T) {
		resetFlags(t)
		setTestIdentity(t)
		server := newFixtureServer(t)
		flagEndpoint = server.URL

		appCmd.SetContext(context.Background())
		out := captureStdout(t, func() {
			if err := runApp(appCmd, nil); err != nil {
				t.Errorf("expected no error, got %s", err)
			}
		})

		if !strings.Contains(out, "nortide-bot") {
			t.Errorf("expected app slug in output, got %q", out)
		}
		if !strings.Contains(out, "App ID      : 99") {
			t.Errorf("expected app id in output, got %q", out)
		}
	})

	t.Run("yaml-output", func(t *testing.T) {
		resetFlags(t)
		setTestIdentity(t)
		server := newFixtureServer(t)
		flagEndpoint = server.URL
		outputFormat = "yaml"

		appCmd.SetContext(context.Background())
		out := captureStdout(t, func() {
			if err := runApp(appCmd, nil); err != nil {
				t.Errorf("expected no error, got %s", err)
			}
		})

		if !strings.Contains(out, "slug: nortide-bot") {
			t.Errorf("expected yaml slug field, got %q", out)
		}
	})

	t.Run("no-identity", func(t *testing.T) {
		resetFlags(t)
		t.Setenv("GH_APP_ID", "")
		t.Setenv("GH_APP_KEY", "")

		appCmd.SetContext(context.Background())
		if err := runApp(appCmd, nil); err == nil {
			t.Errorf("expected error, got nil")
		}
	})
}
