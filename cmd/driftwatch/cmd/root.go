// Package cmd provides the CLI commands for driftwatch.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/errors"
	"github.com/driftwatch/driftwatch/pkg/version"
)

// Persistent flags shared by all subcommands.
var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the driftwatch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driftwatch",
		Short: "Watch a remote FileBrowser for file changes",
		Long: `Driftwatch periodically lists a FileBrowser instance, diffs the
listing against its last stored snapshot, and posts new/modified/deleted
file alerts to a Discord-compatible webhook.

Run 'driftwatch init' to create a config, then 'driftwatch run'.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetVersionTemplate("driftwatch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default: ./driftwatch.yaml or ~/.config/driftwatch/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command with the given context and prints any
// failure in the structured CLI format.
func Execute(ctx context.Context) error {
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}
