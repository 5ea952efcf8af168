// Package store persists the last-known remote snapshot in SQLite.
//
// Two tables: files holds one row per observed path (rows are updated,
// never deleted — absence from the current listing is what signals a
// deletion), notifications is an append-only audit log of sent alerts.
// Timestamps are stored as integer Unix nanoseconds; REAL seconds would
// round-trip imprecisely and misclassify unchanged files as modified.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/driftwatch/driftwatch/internal/errors"
	"github.com/driftwatch/driftwatch/internal/remote"
)

// SQLiteStore is the snapshot store backed by a single SQLite file.
// A file lock next to the database enforces one instance per state file.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	lock   *FileLock
	closed bool
}

// Open opens (creating if needed) the snapshot store at path.
// An empty path opens an in-memory store for testing.
func Open(path string) (*SQLiteStore, error) {
	var dsn string
	var lock *FileLock

	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.New(errors.ErrCodeStateOpen,
				fmt.Sprintf("failed to create state directory %s", dir), err)
		}

		lock = NewFileLock(path)
		acquired, err := lock.TryLock()
		if err != nil {
			return nil, errors.New(errors.ErrCodeStateOpen,
				fmt.Sprintf("failed to acquire state lock %s", lock.Path()), err)
		}
		if !acquired {
			return nil, errors.New(errors.ErrCodeStateLocked,
				"state database is locked by another driftwatch instance", nil).
				WithDetail("lock", lock.Path()).
				WithSuggestion("stop the other instance or point state.path elsewhere")
		}

		if err := validateIntegrity(path); err != nil {
			_ = lock.Unlock()
			return nil, errors.New(errors.ErrCodeStateCorrupt,
				fmt.Sprintf("state database %s is corrupted", path), err).
				WithSuggestion("move the file aside to start from a fresh snapshot")
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, errors.New(errors.ErrCodeStateOpen, "failed to open state database", err)
	}

	// Single connection: one writer, no lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Set pragmas via statements (DSN params may be ignored by modernc.org/sqlite)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			if lock != nil {
				_ = lock.Unlock()
			}
			return nil, errors.New(errors.ErrCodeStateOpen, "failed to set pragma", err)
		}
	}

	s := &SQLiteStore{db: db, path: path, lock: lock}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, errors.New(errors.ErrCodeStateOpen, "failed to initialize schema", err)
	}

	return s, nil
}

// validateIntegrity runs a quick integrity check before opening for real.
// A missing file is fine; it will be created.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}

	return nil
}

// initSchema creates the snapshot tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Last-known state per observed path. Rows are never deleted.
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		is_dir INTEGER NOT NULL,
		name TEXT NOT NULL,
		first_seen INTEGER NOT NULL,
		last_checked INTEGER NOT NULL
	);

	-- Append-only audit log of sent alerts.
	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		notification_time INTEGER NOT NULL,
		change_type TEXT NOT NULL
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LoadAll returns the full prior snapshot keyed by path.
func (s *SQLiteStore) LoadAll(ctx context.Context) (map[string]TrackedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.ErrCodeStateRead, "store is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, size, mod_time, is_dir, name, first_seen, last_checked FROM files`)
	if err != nil {
		return nil, errors.New(errors.ErrCodeStateRead, "failed to load snapshot", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := make(map[string]TrackedFile)
	for rows.Next() {
		var tf TrackedFile
		var modTime, firstSeen, lastChecked int64
		if err := rows.Scan(&tf.Path, &tf.Size, &modTime, &tf.IsDir, &tf.Name, &firstSeen, &lastChecked); err != nil {
			return nil, errors.New(errors.ErrCodeStateRead, "failed to scan snapshot row", err)
		}
		tf.ModTime = time.Unix(0, modTime)
		tf.FirstSeen = time.Unix(0, firstSeen)
		tf.LastChecked = time.Unix(0, lastChecked)
		snapshot[tf.Path] = tf
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.ErrCodeStateRead, "failed to read snapshot", err)
	}

	return snapshot, nil
}

// UpsertAll persists the current cycle's descriptors in one transaction.
// New paths are inserted with first_seen = observedAt; existing paths get
// size, mod_time and last_checked updated while first_seen, is_dir and
// name stay as first recorded. All-or-nothing: a cycle must not persist
// half a snapshot.
func (s *SQLiteStore) UpsertAll(ctx context.Context, files []remote.FileDescriptor, observedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrCodeStateWrite, "store is closed", nil)
	}
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New(errors.ErrCodeStateWrite, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (path, size, mod_time, is_dir, name, first_seen, last_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			last_checked = excluded.last_checked`)
	if err != nil {
		return errors.New(errors.ErrCodeStateWrite, "failed to prepare upsert", err)
	}
	defer func() { _ = stmt.Close() }()

	observed := observedAt.UnixNano()
	for _, f := range files {
		if _, err := stmt.ExecContext(ctx,
			f.Path, f.Size, f.ModTime.UnixNano(), f.IsDir, f.Name, observed, observed); err != nil {
			return errors.New(errors.ErrCodeStateWrite,
				fmt.Sprintf("failed to upsert %s", f.Path), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New(errors.ErrCodeStateWrite, "failed to commit snapshot", err)
	}
	return nil
}

// AppendNotification records one sent alert in the audit log.
func (s *SQLiteStore) AppendNotification(ctx context.Context, path, changeType string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrCodeStateWrite, "store is closed", nil)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (file_path, notification_time, change_type) VALUES (?, ?, ?)`,
		path, sentAt.UnixNano(), changeType)
	if err != nil {
		return errors.New(errors.ErrCodeStateWrite,
			fmt.Sprintf("failed to record notification for %s", path), err)
	}
	return nil
}

// RecentNotifications returns the newest audit rows, most recent first.
func (s *SQLiteStore) RecentNotifications(ctx context.Context, limit int) ([]NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.ErrCodeStateRead, "store is closed", nil)
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, change_type, notification_time
		 FROM notifications ORDER BY notification_time DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.New(errors.ErrCodeStateRead, "failed to load notifications", err)
	}
	defer func() { _ = rows.Close() }()

	var records []NotificationRecord
	for rows.Next() {
		var rec NotificationRecord
		var sentAt int64
		if err := rows.Scan(&rec.Path, &rec.ChangeType, &sentAt); err != nil {
			return nil, errors.New(errors.ErrCodeStateRead, "failed to scan notification row", err)
		}
		rec.SentAt = time.Unix(0, sentAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.ErrCodeStateRead, "failed to read notifications", err)
	}

	return records, nil
}

// Stats reports snapshot totals.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	if s.closed {
		return st, errors.New(errors.ErrCodeStateRead, "store is closed", nil)
	}

	var lastChecked int64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_dir = 0),
			COUNT(*) FILTER (WHERE is_dir = 1),
			COALESCE(SUM(size) FILTER (WHERE is_dir = 0), 0),
			COALESCE(MAX(last_checked), 0)
		FROM files`).Scan(&st.Files, &st.Directories, &st.TotalSize, &lastChecked)
	if err != nil {
		return st, errors.New(errors.ErrCodeStateRead, "failed to read snapshot stats", err)
	}
	if lastChecked != 0 {
		st.LastChecked = time.Unix(0, lastChecked)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications`).Scan(&st.Notifications); err != nil {
		return st, errors.New(errors.ErrCodeStateRead, "failed to count notifications", err)
	}

	return st, nil
}

// Path returns the database file path ("" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database and releases the instance lock.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.db.Close()
	if s.lock != nil {
		if uerr := s.lock.Unlock(); err == nil {
			err = uerr
		}
	}
	return err
}
