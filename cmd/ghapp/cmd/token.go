// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nortide/ghapp"
)

var (
	tokenTarget    string
	tokenInstallID uint64
	tokenRepos     []string
	tokenPerms     []string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenTarget, "target", "", "Installation target, \"owner\" or \"owner/repo\"")
	tokenCmd.Flags().Uint64Var(&tokenInstallID, "installation-id", 0, "Installation ID, skips target resolution")
	tokenCmd.Flags().StringSliceVar(&tokenRepos, "repo", nil, "Repositories to scope the token to")
	tokenCmd.Flags().StringSliceVar(&tokenPerms, "permissions", nil, "Permission scopes, e.g. issues:write")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an installation access token",
	Long: `Mint an installation access token for the app.

The installation is selected by --target or --installation-id. Token scope
can be narrowed with --repo and --permissions; without them the token
carries everything the installation grants.

Examples:
  ghapp token --target ropensci
  ghapp token --target ropensci/magick -o json
  ghapp token --installation-id 12345 --permissions issues:write`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	id, err := identity()
	if err != nil {
		return err
	}

	if tokenTarget == "" && tokenInstallID == 0 && len(tokenRepos) == 0 {
		return errors.New("one of --target, --installation-id or --repo is required")
	}

	opts := []ghapp.Option{ghapp.WithEndpoint(flagEndpoint)}
	if tokenTarget != "" {
		target, err := ghapp.ParseTarget(tokenTarget)
		if err != nil {
			return err
		}
		opts = append(opts, ghapp.WithTarget(target))
	}
	if tokenInstallID != 0 {
		opts = append(opts, ghapp.WithInstallationID(tokenInstallID))
	}
	if len(tokenRepos) > 0 {
		opts = append(opts, ghapp.WithRepositories(tokenRepos...))
	}
	if len(tokenPerms) > 0 {
		opts = append(opts, ghapp.WithPermissions(tokenPerms...))
	}

	token, err := ghapp.NewInstallationToken(cmd.Context(), id.AppID, id.Key, opts...)
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		return formatOutput(token)
	}

	fmt.Printf("Token        : %s\n", token.Token)
	fmt.Printf("Installation : %d\n", token.InstallationID)
	fmt.Printf("Expires      : %s\n", token.Exp.Format(time.RFC3339))
	if token.Owner != "" {
		fmt.Printf("Owner        : %s\n", token.Owner)
	}
	if len(token.Repositories) > 0 {
		fmt.Printf("Repositories : %v\n", token.Repositories)
	}
	if len(token.Permissions) > 0 {
		fmt.Printf("Permissions  : %v\n", token.Permissions)
	}
	return nil
}
