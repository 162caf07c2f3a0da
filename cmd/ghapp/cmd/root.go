// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

// Package cmd implements the ghapp CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nortide/ghapp"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags.
	flagAppID    uint64
	flagKey      string
	flagEndpoint string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ghapp",
	Short: "Mint GitHub app installation tokens",
	Long: `ghapp exchanges a GitHub app's private key for installation access tokens.

The app identity is taken from --app-id and --key when both are given,
otherwise from the GH_APP_ID and GH_APP_KEY environment variables, where
the key may be literal PEM material or a path to a PEM file.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Uint64Var(&flagAppID, "app-id", 0, "GitHub app ID (default: GH_APP_ID)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "", "Path to the app's PEM private key (default: GH_APP_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "GitHub REST API(v3) endpoint (default: https://api.github.com/)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// identity resolves the app identity. Both identity flags must be given to
// take effect; otherwise the environment adapter is used.
func identity() (ghapp.Identity, error) {
	if flagAppID == 0 || flagKey == "" {
		return ghapp.IdentityFromEnv()
	}

	data, err := os.ReadFile(flagKey)
	if err != nil {
		return ghapp.Identity{}, fmt.Errorf("failed to read key file: %w", err)
	}

	signer, err := ghapp.ParseKey(data)
	if err != nil {
		return ghapp.Identity{}, err
	}
	return ghapp.Identity{AppID: flagAppID, Key: signer}, nil
}

// client builds a client for the configured endpoint.
func client() (*ghapp.Client, error) {
	return ghapp.NewClient(ghapp.WithEndpoint(flagEndpoint))
}

// assertion mints a fresh assertion from the configured identity.
func assertion(ctx context.Context) (ghapp.Assertion, error) {
	id, err := identity()
	if err != nil {
		return ghapp.Assertion{}, err
	}
	return ghapp.NewAssertion(ctx, id)
}

// formatOutput handles output formatting based on the --output flag. Text
// format is handled by each command.
func formatOutput(data any) error {
	switch outputFormat {
	case "json":
		return outputJSON(data)
	case "yaml":
		return outputYAML(data)
	default:
		return nil
	}
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func outputYAML(data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
