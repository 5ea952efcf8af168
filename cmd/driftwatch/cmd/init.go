package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/configs"
	"github.com/driftwatch/driftwatch/internal/config"
	"github.com/driftwatch/driftwatch/internal/errors"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration file",
		Long: `Write the annotated configuration template so you can fill in the
FileBrowser credentials and the webhook URL. An existing file is only
replaced with --force, and a timestamped backup is kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, path, force)
		},
	}

	cmd.Flags().StringVar(&path, "path", "",
		"Where to write the config (default: "+config.UserConfigPath()+")")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config (a backup is kept)")

	return cmd
}

func runInit(cmd *cobra.Command, path string, force bool) error {
	if path == "" {
		path = config.UserConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("config file already exists: %s", path), nil).
				WithSuggestion("pass --force to overwrite (the old file is backed up)")
		}
		backup, err := config.Backup(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backed up existing config to %s\n", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ConfigError(
			fmt.Sprintf("failed to create config directory for %s", path), err)
	}

	// 0600: the file will hold remote credentials
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o600); err != nil {
		return errors.ConfigError(
			fmt.Sprintf("failed to write config file %s", path), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit the credentials, then start with 'driftwatch run'.")
	return nil
}
