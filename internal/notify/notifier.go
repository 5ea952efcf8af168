package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/internal/monitor"
)

// bucketStyle is the rendering of one change type.
type bucketStyle struct {
	typ   monitor.ChangeType
	title string
	color int
}

// Bucket order is fixed: new, then modified, then deleted.
var bucketStyles = []bucketStyle{
	{monitor.ChangeNew, "📦 New Files Uploaded", 0x00ff00},
	{monitor.ChangeModified, "✏️ Files Modified", 0xffff00},
	{monitor.ChangeDeleted, "🗑️ Files Deleted", 0xff0000},
}

// Notifier turns change sets into alerts and pushes them through a
// sink. A nil sink disables delivery: changes are logged and nothing
// is reported as sent.
type Notifier struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

var _ monitor.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier delivering through sink.
func NewNotifier(sink Sink, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sink: sink, logger: logger, now: time.Now}
}

// Publish renders and delivers the change set, returning the entries
// that actually went out. An empty change set produces no sink calls.
// A failed batch is logged and dropped from the result; later batches
// are still attempted.
func (n *Notifier) Publish(ctx context.Context, changes monitor.ChangeSet) []monitor.Notification {
	if changes.Empty() {
		return nil
	}

	units := buildAlerts(changes, n.now().UTC())

	if n.sink == nil {
		n.logger.Info("webhook disabled, skipping delivery",
			"alerts", len(units), "changes", changes.Total())
		return nil
	}

	var sent []monitor.Notification
	batches := chunk(units, MaxAlertsPerBatch)
	for i, batch := range batches {
		alerts := make([]Alert, len(batch))
		for j, u := range batch {
			alerts[j] = u.alert
		}

		if err := n.sink.Send(ctx, alerts); err != nil {
			n.logger.Error("alert batch delivery failed",
				"batch", i+1, "batches", len(batches), "alerts", len(alerts), "error", err)
			continue
		}
		n.logger.Info("alert batch delivered",
			"batch", i+1, "batches", len(batches), "alerts", len(alerts))

		for _, u := range batch {
			sent = append(sent, u.covers...)
		}
	}
	return sent
}

// alertUnit pairs a rendered alert with the entries it covers, so a
// delivered batch can be traced back to file paths for the audit log.
type alertUnit struct {
	alert  Alert
	covers []monitor.Notification
}

// buildAlerts chunks every non-empty bucket into alerts of at most
// MaxFilesPerAlert entries, preserving bucket-internal order.
func buildAlerts(changes monitor.ChangeSet, at time.Time) []alertUnit {
	var units []alertUnit
	for _, style := range bucketStyles {
		for _, entries := range chunk(changes.Bucket(style.typ), MaxFilesPerAlert) {
			unit := alertUnit{alert: renderAlert(style, entries, at)}
			for _, e := range entries {
				unit.covers = append(unit.covers, monitor.Notification{Path: e.Path, Type: style.typ})
			}
			units = append(units, unit)
		}
	}
	return units
}

// renderAlert renders one chunk of entries: a line per file,
// "`path` (size)" when the size is known, capped at MaxFilesPerAlert
// lines. The footer counts and sums the full chunk even when lines
// were cut.
func renderAlert(style bucketStyle, entries []monitor.ChangeEntry, at time.Time) Alert {
	lines := make([]string, 0, len(entries))
	var total int64
	for _, e := range entries {
		if e.Size > 0 {
			lines = append(lines, fmt.Sprintf("`%s` (%s)", e.Path, HumanSize(e.Size)))
			total += e.Size
		} else {
			lines = append(lines, fmt.Sprintf("`%s`", e.Path))
		}
	}
	if len(lines) > MaxFilesPerAlert {
		lines = lines[:MaxFilesPerAlert]
	}

	return Alert{
		Title:       style.title,
		Color:       style.color,
		Description: strings.Join(lines, "\n"),
		Footer:      fmt.Sprintf("Total: %d file(s) | %s", len(entries), HumanSize(total)),
		Timestamp:   at,
	}
}

// chunk splits s into consecutive slices of at most size elements,
// preserving order.
func chunk[T any](s []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		out = append(out, s[start:end:end])
	}
	return out
}
