// Package main provides the entry point for the driftwatch CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftwatch/driftwatch/cmd/driftwatch/cmd"
)

func main() {
	// Interrupts cancel the context; the scheduler stops between cycles.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
