// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nortide/ghapp"
)

func init() {
	rootCmd.AddCommand(revokeCmd)
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Revoke an installation access token",
	Long: `Revoke an installation access token.

The token authenticates its own revocation; no app key is required. A
revoked token cannot be restored.`,
	Args: cobra.ExactArgs(1),
	RunE: runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	c, err := client()
	if err != nil {
		return err
	}

	if err := c.RevokeToken(cmd.Context(), ghapp.ScopedToken(args[0])); err != nil {
		return err
	}

	fmt.Println("Token revoked.")
	return nil
}
