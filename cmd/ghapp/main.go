// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

// ghapp is a CLI to mint GitHub app installation tokens and manage app
// installations.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nortide/ghapp/cmd/ghapp/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
