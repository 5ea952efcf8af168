package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwatch/driftwatch/internal/remote"
)

func fd(path string, isDir bool) remote.FileDescriptor {
	return remote.FileDescriptor{Path: path, IsDir: isDir}
}

func paths(files []remote.FileDescriptor) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestFilter_DropsDirectoriesAlways(t *testing.T) {
	// No patterns configured: directories are still dropped
	f := NewFilter(nil, nil)

	got := f.Apply([]remote.FileDescriptor{
		fd("/docs", true),
		fd("/docs/a.txt", false),
		fd("/media", true),
	})

	assert.Equal(t, []string{"/docs/a.txt"}, paths(got))
}

func TestFilter_IgnoreDirIsSubstringMatch(t *testing.T) {
	f := NewFilter([]string{".git", "tmp"}, nil)

	// ".git" and "tmp" also match inside filenames: matching is
	// substring containment, not path-segment aware
	got := f.Apply([]remote.FileDescriptor{
		fd("/repo/.git/config", false),
		fd("/repo/.gitignore", false),
		fd("/notes/tmpfile.txt", false),
		fd("/notes/keep.txt", false),
	})

	assert.Equal(t, []string{"/notes/keep.txt"}, paths(got))
}

func TestFilter_ExcludePatternIsSuffixMatch(t *testing.T) {
	f := NewFilter(nil, []string{".tmp", ".cache"})

	got := f.Apply([]remote.FileDescriptor{
		fd("/a/upload.tmp", false),
		fd("/a/thumbs.cache", false),
		fd("/a/tmp.report", false), // ".tmp" not at the end, kept
		fd("/a/report.pdf", false),
	})

	assert.Equal(t, []string{"/a/tmp.report", "/a/report.pdf"}, paths(got))
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	f := NewFilter([]string{"node_modules"}, []string{".tmp"})

	got := f.Apply([]remote.FileDescriptor{
		fd("/z.txt", false),
		fd("/node_modules/pkg/index.js", false),
		fd("/a.txt", false),
		fd("/m.tmp", false),
		fd("/k.txt", false),
	})

	assert.Equal(t, []string{"/z.txt", "/a.txt", "/k.txt"}, paths(got))
}

func TestFilter_EmptyInput(t *testing.T) {
	f := NewFilter([]string{".git"}, []string{".tmp"})

	assert.Empty(t, f.Apply(nil))
}
