package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/errors"
	"github.com/driftwatch/driftwatch/internal/remote"
)

func openMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesDirectoryAndSchema(t *testing.T) {
	// Given: a state path in a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	// When: opening
	s, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// Then: the schema is usable immediately
	snapshot, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.Equal(t, path, s.Path())
}

func TestOpen_SecondInstanceRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	// A second open on the same state file must fail fatally
	_, err = Open(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateLocked, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}

func TestOpen_ReleasesLockOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestOpen_CorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o600))

	_, err := Open(path)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateCorrupt, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}

func TestUpsertAll_InsertsWithFirstSeen(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	observed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	files := []remote.FileDescriptor{
		{Path: "/a.txt", Name: "a.txt", Size: 10, ModTime: observed.Add(-time.Hour)},
		{Path: "/docs", Name: "docs", IsDir: true, ModTime: observed.Add(-2 * time.Hour)},
	}
	require.NoError(t, s.UpsertAll(ctx, files, observed))

	snapshot, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	a := snapshot["/a.txt"]
	assert.Equal(t, int64(10), a.Size)
	assert.Equal(t, "a.txt", a.Name)
	assert.False(t, a.IsDir)
	assert.True(t, a.FirstSeen.Equal(observed))
	assert.True(t, a.LastChecked.Equal(observed))

	assert.True(t, snapshot["/docs"].IsDir)
}

func TestUpsertAll_UpdateKeepsFirstSeenAndIdentity(t *testing.T) {
	// Given: a path observed in an earlier cycle
	s := openMemory(t)
	ctx := context.Background()
	firstCycle := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	secondCycle := firstCycle.Add(30 * time.Minute)

	require.NoError(t, s.UpsertAll(ctx, []remote.FileDescriptor{
		{Path: "/a.txt", Name: "a.txt", Size: 10, ModTime: firstCycle.Add(-time.Hour)},
	}, firstCycle))

	// When: the same path is observed again with new size and mod time,
	// and the supplier reports a different name
	newMod := secondCycle.Add(-time.Minute)
	require.NoError(t, s.UpsertAll(ctx, []remote.FileDescriptor{
		{Path: "/a.txt", Name: "renamed.txt", Size: 999, ModTime: newMod, IsDir: true},
	}, secondCycle))

	// Then: size, mod time and last_checked move; first_seen, name and
	// is_dir stay as first recorded
	snapshot, err := s.LoadAll(ctx)
	require.NoError(t, err)
	a := snapshot["/a.txt"]

	assert.Equal(t, int64(999), a.Size)
	assert.True(t, a.ModTime.Equal(newMod))
	assert.True(t, a.LastChecked.Equal(secondCycle))
	assert.True(t, a.FirstSeen.Equal(firstCycle))
	assert.Equal(t, "a.txt", a.Name)
	assert.False(t, a.IsDir)
}

func TestUpsertAll_RoundTripsNanosecondModTimes(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	modTime := time.Date(2026, 2, 1, 12, 0, 0, 123456789, time.UTC)
	require.NoError(t, s.UpsertAll(ctx, []remote.FileDescriptor{
		{Path: "/precise.bin", Name: "precise.bin", Size: 1, ModTime: modTime},
	}, time.Now()))

	snapshot, err := s.LoadAll(ctx)
	require.NoError(t, err)

	// Equal round trip: a reread mod time must never look newer
	assert.True(t, snapshot["/precise.bin"].ModTime.Equal(modTime))
}

func TestUpsertAll_EmptyIsNoop(t *testing.T) {
	s := openMemory(t)

	assert.NoError(t, s.UpsertAll(context.Background(), nil, time.Now()))
}

func TestUpsertAll_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()
	observed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.UpsertAll(ctx, []remote.FileDescriptor{
		{Path: "/a.txt", Name: "a.txt", Size: 10, ModTime: observed},
	}, observed))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	snapshot, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	require.Contains(t, snapshot, "/a.txt")
	assert.Equal(t, int64(10), snapshot["/a.txt"].Size)
}

func TestAppendNotification_AndRecentNotifications(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendNotification(ctx, "/a.txt", "new", base))
	require.NoError(t, s.AppendNotification(ctx, "/b.txt", "modified", base.Add(time.Minute)))
	require.NoError(t, s.AppendNotification(ctx, "/c.txt", "deleted", base.Add(2*time.Minute)))

	records, err := s.RecentNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first
	assert.Equal(t, "/c.txt", records[0].Path)
	assert.Equal(t, "deleted", records[0].ChangeType)
	assert.True(t, records[0].SentAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "/b.txt", records[1].Path)
}

func TestStats_SummarizesSnapshot(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	observed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertAll(ctx, []remote.FileDescriptor{
		{Path: "/a.txt", Name: "a.txt", Size: 100, ModTime: observed},
		{Path: "/b.txt", Name: "b.txt", Size: 50, ModTime: observed},
		{Path: "/docs", Name: "docs", IsDir: true, ModTime: observed},
	}, observed))
	require.NoError(t, s.AppendNotification(ctx, "/a.txt", "new", observed))

	st, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), st.Files)
	assert.Equal(t, int64(1), st.Directories)
	assert.Equal(t, int64(150), st.TotalSize)
	assert.True(t, st.LastChecked.Equal(observed))
	assert.Equal(t, int64(1), st.Notifications)
}

func TestStats_EmptySnapshot(t *testing.T) {
	s := openMemory(t)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, st.Files)
	assert.Zero(t, st.TotalSize)
	assert.True(t, st.LastChecked.IsZero())
}

func TestStore_OperationsFailAfterClose(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err = s.LoadAll(ctx)
	assert.Error(t, err)
	assert.Error(t, s.UpsertAll(ctx, []remote.FileDescriptor{{Path: "/x"}}, time.Now()))
	assert.Error(t, s.AppendNotification(ctx, "/x", "new", time.Now()))

	// Close twice is fine
	assert.NoError(t, s.Close())
}
