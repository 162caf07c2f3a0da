// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(appCmd)
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Show app metadata",
	Long: `Fetch metadata of the authenticated app.

This only needs a valid app id and key, which makes it a cheap way to
verify credentials before using them elsewhere.`,
	RunE: runApp,
}

func runApp(cmd *cobra.Command, args []string) error {
	a, err := assertion(cmd.Context())
	if err != nil {
		return err
	}

	c, err := client()
	if err != nil {
		return err
	}

	app, err := c.App(cmd.Context(), a)
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		return formatOutput(app)
	}

	fmt.Printf("App ID      : %d\n", app.ID)
	fmt.Printf("Slug        : %s\n", app.Slug)
	fmt.Printf("Name        : %s\n", app.Name)
	fmt.Printf("Owner       : %s\n", app.Owner)
	if app.Description != "" {
		fmt.Printf("Description : %s\n", app.Description)
	}
	if len(app.Permissions) > 0 {
		fmt.Printf("Permissions : %v\n", app.Permissions)
	}
	if len(app.Events) > 0 {
		fmt.Printf("Events      : %v\n", app.Events)
	}
	return nil
}
