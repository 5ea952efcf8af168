package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/config"
	"github.com/driftwatch/driftwatch/internal/logging"
	"github.com/driftwatch/driftwatch/internal/monitor"
	"github.com/driftwatch/driftwatch/internal/notify"
	"github.com/driftwatch/driftwatch/internal/remote"
	"github.com/driftwatch/driftwatch/internal/store"
)

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the monitoring loop",
		Long: `Start watching the configured FileBrowser instance. Each cycle lists
the remote tree, diffs it against the stored snapshot, persists the new
state and posts alerts for detected changes. Interrupt with Ctrl-C;
the loop stops between cycles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd.Context(), once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit")

	return cmd
}

// runMonitor wires the configured collaborators into a scheduler and
// runs it.
func runMonitor(ctx context.Context, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.File
	if debugMode {
		logCfg.Level = "debug"
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	lister := remote.NewClient(remote.Config{
		URL:      cfg.Remote.URL,
		Username: cfg.Remote.Username,
		Password: cfg.Remote.Password,
		Root:     cfg.Remote.Root,
		Timeout:  cfg.RemoteTimeout(),
	})

	var sink notify.Sink
	if cfg.Webhook.URL != "" {
		sink = notify.NewDiscordSink(cfg.Webhook.URL, cfg.WebhookTimeout())
	} else {
		slog.Warn("webhook.url is empty, changes will be detected but not delivered")
	}

	sched := monitor.NewScheduler(monitor.Config{
		Lister:   lister,
		Filter:   monitor.NewFilter(cfg.Monitor.IgnoreDirs, cfg.Monitor.ExcludePatterns),
		Store:    st,
		Notifier: notify.NewNotifier(sink, slog.Default()),
		Interval: cfg.Interval(),
		Logger:   slog.Default(),
	})

	slog.Info("driftwatch starting",
		"remote", cfg.Remote.URL, "root", cfg.Remote.Root,
		"interval", cfg.Interval(), "state", cfg.State.Path)

	if once {
		return sched.RunOnce(ctx)
	}
	return sched.Run(ctx)
}
