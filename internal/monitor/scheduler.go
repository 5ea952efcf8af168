package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/driftwatch/driftwatch/internal/remote"
	"github.com/driftwatch/driftwatch/internal/store"
)

// DefaultDetectionWindow is how far back the first cycle looks when no
// prior cycle has completed yet.
const DefaultDetectionWindow = 30 * time.Minute

// Store is the snapshot persistence one cycle needs.
type Store interface {
	LoadAll(ctx context.Context) (map[string]store.TrackedFile, error)
	UpsertAll(ctx context.Context, files []remote.FileDescriptor, observedAt time.Time) error
	AppendNotification(ctx context.Context, path, changeType string, sentAt time.Time) error
}

// Notification is one delivered alert entry, recorded in the audit log.
type Notification struct {
	Path string
	Type ChangeType
}

// Notifier publishes a change set and reports the entries that
// actually went out. Delivery failures are the notifier's own concern;
// the scheduler only records successes.
type Notifier interface {
	Publish(ctx context.Context, changes ChangeSet) []Notification
}

// Config assembles a Scheduler's collaborators.
type Config struct {
	Lister   remote.Lister
	Filter   *Filter
	Store    Store
	Notifier Notifier
	Interval time.Duration
	Logger   *slog.Logger
}

// Scheduler drives the monitoring loop: one cycle at a time, detection
// window tracked across cycles.
type Scheduler struct {
	lister   remote.Lister
	filter   *Filter
	store    Store
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger

	now func() time.Time

	// lastRun is the start time of the last successfully completed
	// cycle. Owned exclusively by the scheduler.
	lastRun time.Time
}

// NewScheduler creates a scheduler from its collaborators. A nil
// Filter passes every non-directory through.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	filter := cfg.Filter
	if filter == nil {
		filter = NewFilter(nil, nil)
	}
	return &Scheduler{
		lister:   cfg.Lister,
		filter:   filter,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		interval: cfg.Interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run loops monitoring cycles until ctx is cancelled. A failed cycle
// is logged and retried after the full interval; the detection window
// only advances with successful cycles. Cancellation during the sleep
// stops the loop cleanly.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("monitor started", "interval", s.interval)

	for {
		if err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("monitor stopped")
				return nil
			}
			s.logger.Error("cycle failed, retrying after interval",
				"interval", s.interval, "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopped")
			return nil
		case <-time.After(s.interval):
		}
	}
}

// RunOnce executes one monitoring cycle: list, filter, diff against
// the stored snapshot, persist the current listing, then notify. Any
// fatal error leaves the detection window where it was, so the next
// attempt re-examines the same span.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cycleStart := s.now()
	logger := s.logger.With("cycle_id", uuid.NewString())

	detectionTime := s.lastRun
	if detectionTime.IsZero() {
		detectionTime = cycleStart.Add(-DefaultDetectionWindow)
	}
	logger.Info("cycle started", "detection_time", detectionTime)

	listing, failedSubtrees, err := s.lister.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range failedSubtrees {
		logger.Warn("subtree unlistable, deletions under it suppressed this cycle",
			"path", failedSubtrees[i].Path, "error", failedSubtrees[i].Err)
	}

	current := s.filter.Apply(listing)
	logger.Info("listing fetched",
		"entries", len(listing), "tracked", len(current), "failed_subtrees", len(failedSubtrees))

	previous, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	changes := Diff(current, previous, detectionTime, failedSubtrees)

	// Persist before notifying: an alert must never describe state the
	// store could not save, or the retry would alert it again.
	if err := s.store.UpsertAll(ctx, current, cycleStart); err != nil {
		return err
	}

	if changes.Empty() {
		logger.Info("no changes detected")
	} else {
		logger.Info("changes detected",
			"new", len(changes.New), "modified", len(changes.Modified), "deleted", len(changes.Deleted))

		sentAt := s.now()
		for _, sent := range s.notifier.Publish(ctx, changes) {
			if err := s.store.AppendNotification(ctx, sent.Path, string(sent.Type), sentAt); err != nil {
				// Audit only: a lost row must not fail the cycle.
				logger.Warn("failed to record notification", "path", sent.Path, "error", err)
			}
		}
	}

	s.lastRun = cycleStart
	logger.Info("cycle completed", "duration", s.now().Sub(cycleStart))
	return nil
}

// LastRun returns the start time of the last completed cycle, zero
// before the first success.
func (s *Scheduler) LastRun() time.Time {
	return s.lastRun
}
