package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the maximum number of config backups to keep.
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files.
	BackupSuffix = ".bak"
)

// Backup creates a timestamped backup of the given config file.
// Returns the backup file path on success. If the file does not
// exist there is nothing to back up and it returns "" with nil error.
func Backup(path string) (string, error) {
	if !fileExists(path) {
		return "", nil
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s%s.%s", path, BackupSuffix, timestamp)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	if err := os.WriteFile(backupPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Best-effort cleanup; the backup itself already succeeded
	_ = cleanupOldBackups(path)

	return backupPath, nil
}

// cleanupOldBackups removes backups beyond MaxBackups, oldest first.
func cleanupOldBackups(path string) error {
	pattern := path + BackupSuffix + ".*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	if len(matches) <= MaxBackups {
		return nil
	}

	// Timestamped suffixes sort chronologically
	sort.Strings(matches)

	for _, old := range matches[:len(matches)-MaxBackups] {
		if !strings.HasPrefix(filepath.Base(old), filepath.Base(path)) {
			continue
		}
		if err := os.Remove(old); err != nil {
			return err
		}
	}

	return nil
}
