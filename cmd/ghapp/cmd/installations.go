// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nortide/ghapp"
)

var deleteYes bool

func init() {
	installationsDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Confirm deletion")
	installationsCmd.AddCommand(installationsListCmd)
	installationsCmd.AddCommand(installationsInfoCmd)
	installationsCmd.AddCommand(installationsDeleteCmd)
	rootCmd.AddCommand(installationsCmd)
}

var installationsCmd = &cobra.Command{
	Use:     "installations",
	Aliases: []string{"installation"},
	Short:   "Manage app installations",
}

var installationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all installations of the app",
	RunE:  runInstallationsList,
}

var installationsInfoCmd = &cobra.Command{
	Use:   "info <owner[/repo]>",
	Short: "Show installation metadata for a target",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstallationsInfo,
}

var installationsDeleteCmd = &cobra.Command{
	Use:   "delete <installation-id>",
	Short: "Uninstall the app from an account",
	Long: `Uninstall the app from the account the installation is bound to.

This cannot be undone and revokes all tokens issued for the installation.
Deletion must be confirmed with --yes.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstallationsDelete,
}

func runInstallationsList(cmd *cobra.Command, args []string) error {
	a, err := assertion(cmd.Context())
	if err != nil {
		return err
	}

	c, err := client()
	if err != nil {
		return err
	}

	installations, err := c.Installations(cmd.Context(), a)
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		return formatOutput(installations)
	}

	if len(installations) == 0 {
		fmt.Println("No installations.")
		return nil
	}

	fmt.Printf("%-12s %-24s %-14s %s\n", "ID", "OWNER", "TYPE", "SUSPENDED")
	for _, inst := range installations {
		suspended := "-"
		if inst.Suspended() {
			suspended = "yes"
		}
		fmt.Printf("%-12d %-24s %-14s %s\n", inst.ID, inst.Owner, inst.OwnerType, suspended)
	}
	return nil
}

func runInstallationsInfo(cmd *cobra.Command, args []string) error {
	target, err := ghapp.ParseTarget(args[0])
	if err != nil {
		return err
	}

	a, err := assertion(cmd.Context())
	if err != nil {
		return err
	}

	c, err := client()
	if err != nil {
		return err
	}

	inst, err := c.Installation(cmd.Context(), target, a)
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		return formatOutput(inst)
	}

	fmt.Printf("ID          : %d\n", inst.ID)
	fmt.Printf("App ID      : %d\n", inst.AppID)
	fmt.Printf("Owner       : %s\n", inst.Owner)
	fmt.Printf("Type        : %s\n", inst.OwnerType)
	if len(inst.Permissions) > 0 {
		fmt.Printf("Permissions : %v\n", inst.Permissions)
	}
	if inst.Suspended() {
		fmt.Printf("Suspended   : %s\n", inst.SuspendedAt.Format(time.RFC3339))
	}
	if !inst.CreatedAt.IsZero() {
		fmt.Printf("Created     : %s\n", inst.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runInstallationsDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid installation id %q: %w", args[0], err)
	}

	if !deleteYes {
		return errors.New("refusing to delete installation without --yes")
	}

	a, err := assertion(cmd.Context())
	if err != nil {
		return err
	}

	c, err := client()
	if err != nil {
		return err
	}

	if err := c.DeleteInstallation(cmd.Context(), id, a); err != nil {
		return err
	}

	fmt.Printf("Installation %d deleted.\n", id)
	return nil
}
