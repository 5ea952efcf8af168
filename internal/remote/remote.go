// Package remote lists the file tree of a FileBrowser server.
//
// The listing is a recursive walk over GET /api/resources, authenticated
// with a token from POST /api/login. A walk tolerates unlistable
// subtrees: their contents are omitted from the result and reported
// separately so callers can tell "failed to list" from "files removed".
package remote

import (
	"context"
	"fmt"
	"time"
)

// FileDescriptor describes one remote filesystem entry at listing time.
type FileDescriptor struct {
	// Path is the absolute slash-separated remote path, unique per listing.
	Path string
	// Name is the display name (final path element).
	Name string
	// Size in bytes.
	Size int64
	// ModTime is the remote modification time.
	ModTime time.Time
	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// SubtreeError records a directory whose listing failed mid-walk.
// Files under it are missing from the result for this cycle only.
type SubtreeError struct {
	Path string
	Err  error
}

func (e *SubtreeError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Path, e.Err)
}

func (e *SubtreeError) Unwrap() error {
	return e.Err
}

// Lister produces the current remote tree as a flat descriptor sequence.
// Implementations return the descriptors walked so far, the subtrees that
// could not be listed, and a fatal error when the walk could not start.
type Lister interface {
	ListAll(ctx context.Context) ([]FileDescriptor, []SubtreeError, error)
}
