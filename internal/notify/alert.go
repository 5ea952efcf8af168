package notify

import (
	"context"
	"fmt"
	"time"
)

// Limits imposed by Discord on webhook messages. The alert builder
// enforces them; sinks may assume they hold.
const (
	// MaxFilesPerAlert caps the file lines in one alert.
	MaxFilesPerAlert = 15
	// MaxAlertsPerBatch caps the alerts in one delivery batch.
	MaxAlertsPerBatch = 10
)

// Alert is one rendered notification covering up to MaxFilesPerAlert
// files of a single change type.
type Alert struct {
	Title       string
	Color       int
	Description string
	Footer      string
	Timestamp   time.Time
}

// Sink delivers one batch of alerts to an external channel.
// Implementations receive at most MaxAlertsPerBatch alerts per call.
type Sink interface {
	Send(ctx context.Context, alerts []Alert) error
}

// HumanSize formats a byte count with one decimal place, dividing
// through B, KB, MB and GB and capping at TB.
func HumanSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
