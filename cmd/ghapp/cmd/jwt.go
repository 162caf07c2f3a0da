// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(jwtCmd)
}

var jwtCmd = &cobra.Command{
	Use:   "jwt",
	Short: "Mint a bare app JWT",
	Long: `Mint a signed app JWT without exchanging it for an installation token.

The JWT authenticates as the app itself and is valid for five minutes.
Most API access should use installation tokens instead; see "ghapp token".`,
	RunE: runJWT,
}

func runJWT(cmd *cobra.Command, args []string) error {
	a, err := assertion(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		return formatOutput(a)
	}

	fmt.Printf("JWT       : %s\n", a.Value)
	fmt.Printf("App ID    : %d\n", a.AppID)
	fmt.Printf("Issued at : %s\n", a.IssuedAt.Format(time.RFC3339))
	fmt.Printf("Expires   : %s\n", a.Exp.Format(time.RFC3339))
	return nil
}
