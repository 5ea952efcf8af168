package monitor

import (
	"strings"

	"github.com/driftwatch/driftwatch/internal/remote"
)

// Filter removes directories and ignored paths from a listing before it
// reaches the differ. Matching is deliberately crude: an ignore-dir
// string excludes a path when it occurs anywhere in it (not
// segment-aware, so "tmp" also drops "/notes/tmpfile.txt"), and an
// exclude pattern excludes a path that ends with it.
type Filter struct {
	ignoreDirs      []string
	excludePatterns []string
}

// NewFilter builds a filter from the configured ignore-dir substrings and
// exclude-pattern suffixes.
func NewFilter(ignoreDirs, excludePatterns []string) *Filter {
	return &Filter{
		ignoreDirs:      ignoreDirs,
		excludePatterns: excludePatterns,
	}
}

// Apply returns the descriptors that survive filtering, preserving input
// order. Directories are always dropped regardless of patterns.
func (f *Filter) Apply(files []remote.FileDescriptor) []remote.FileDescriptor {
	filtered := make([]remote.FileDescriptor, 0, len(files))
	for _, fd := range files {
		if fd.IsDir {
			continue
		}
		if f.excluded(fd.Path) {
			continue
		}
		filtered = append(filtered, fd)
	}
	return filtered
}

func (f *Filter) excluded(path string) bool {
	for _, dir := range f.ignoreDirs {
		if strings.Contains(path, dir) {
			return true
		}
	}
	for _, pattern := range f.excludePatterns {
		if strings.HasSuffix(path, pattern) {
			return true
		}
	}
	return false
}
