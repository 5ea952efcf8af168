package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/config"
	"github.com/driftwatch/driftwatch/internal/notify"
	"github.com/driftwatch/driftwatch/internal/store"
)

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	StatePath     string `json:"state_path"`
	Files         int64  `json:"files"`
	Directories   int64  `json:"directories"`
	TotalSize     int64  `json:"total_size"`
	LastChecked   string `json:"last_checked,omitempty"`
	Notifications int64  `json:"notifications"`
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show snapshot statistics",
		Long: `Show how many paths the snapshot tracks, their total size, the last
observation time, and how many alerts have been recorded. The snapshot
only grows: rows for files deleted on the remote are kept as history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		out := statusOutput{
			StatePath:     st.Path(),
			Files:         stats.Files,
			Directories:   stats.Directories,
			TotalSize:     stats.TotalSize,
			Notifications: stats.Notifications,
		}
		if !stats.LastChecked.IsZero() {
			out.LastChecked = stats.LastChecked.UTC().Format(time.RFC3339)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "State:           %s\n", st.Path())
	fmt.Fprintf(w, "Tracked files:   %d (%s)\n", stats.Files, notify.HumanSize(stats.TotalSize))
	if stats.Directories > 0 {
		fmt.Fprintf(w, "Tracked dirs:    %d\n", stats.Directories)
	}
	if stats.LastChecked.IsZero() {
		fmt.Fprintf(w, "Last checked:    never\n")
	} else {
		fmt.Fprintf(w, "Last checked:    %s\n", stats.LastChecked.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Alerts recorded: %d\n", stats.Notifications)
	return nil
}
