package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/config"
	"github.com/driftwatch/driftwatch/internal/store"
)

// historyRow is the JSON shape of one audit log entry.
type historyRow struct {
	Path       string `json:"path"`
	ChangeType string `json:"change_type"`
	SentAt     string `json:"sent_at"`
}

// newHistoryCmd creates the history command.
func newHistoryCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent alerts",
		Long:  `Read the notification audit log, most recent first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, jsonOutput bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records, err := st.RecentNotifications(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		rows := make([]historyRow, len(records))
		for i, r := range records {
			rows[i] = historyRow{
				Path:       r.Path,
				ChangeType: r.ChangeType,
				SentAt:     r.SentAt.UTC().Format(time.RFC3339),
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notifications recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SENT\tTYPE\tPATH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			r.SentAt.UTC().Format("2006-01-02 15:04:05"), r.ChangeType, r.Path)
	}
	return w.Flush()
}
