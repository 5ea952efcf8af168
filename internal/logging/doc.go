// Package logging provides structured logging for driftwatch.
//
// By default logs go to stderr: human-readable when stderr is a terminal,
// JSON otherwise. When a log file is configured, JSON logs are written to
// the file with size-based rotation, optionally mirrored to stderr.
package logging
