package store

import "time"

// TrackedFile is one persisted row of the last-known snapshot.
type TrackedFile struct {
	// Path is the absolute remote path, unique across the snapshot.
	Path string
	// Size in bytes at the last observation.
	Size int64
	// ModTime is the remote modification time at the last observation.
	ModTime time.Time
	// IsDir reports whether the entry was a directory.
	IsDir bool
	// Name is the display name.
	Name string
	// FirstSeen is set once when the path is first observed and never
	// changes afterwards.
	FirstSeen time.Time
	// LastChecked is updated every cycle the path is observed.
	LastChecked time.Time
}

// NotificationRecord is one row of the append-only alert audit log.
type NotificationRecord struct {
	Path       string
	ChangeType string
	SentAt     time.Time
}

// Stats summarizes the stored snapshot.
type Stats struct {
	// Files and Directories count tracked rows by kind.
	Files       int64
	Directories int64
	// TotalSize is the byte sum over tracked files.
	TotalSize int64
	// LastChecked is the most recent observation time, zero when the
	// snapshot is empty.
	LastChecked time.Time
	// Notifications counts audit log rows.
	Notifications int64
}
