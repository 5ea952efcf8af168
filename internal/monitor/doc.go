// Package monitor implements the change-detection core: filtering a
// remote listing, diffing it against the persisted snapshot under a
// sliding detection window, and driving the periodic cycle that ties
// listing, diffing, persistence and notification together.
//
// The detection window is the earliest modification time eligible for
// alerting in a cycle. It equals the start time of the last successfully
// completed cycle, or 30 minutes before the current cycle when no cycle
// has completed yet. A failed cycle never advances the window, so the
// next attempt re-examines the same span instead of silently skipping it.
package monitor
