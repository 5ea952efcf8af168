package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/store"
)

func TestHistoryCmd_Empty(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	out, err := execute(t, "history", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "No notifications recorded yet.")
}

func TestHistoryCmd_ListsRecentFirst(t *testing.T) {
	cfgPath, statePath := writeTestConfig(t)

	st, err := store.Open(statePath)
	require.NoError(t, err)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendNotification(context.Background(), "/old.txt", "new", base))
	require.NoError(t, st.AppendNotification(context.Background(), "/fresh.txt", "deleted", base.Add(time.Hour)))
	require.NoError(t, st.Close())

	out, err := execute(t, "history", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "SENT")
	assert.Less(t, // most recent row printed first
		strings.Index(out, "/fresh.txt"), strings.Index(out, "/old.txt"))
	assert.Contains(t, out, "deleted")
}

func TestHistoryCmd_JSON(t *testing.T) {
	cfgPath, statePath := writeTestConfig(t)

	st, err := store.Open(statePath)
	require.NoError(t, err)
	sent := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendNotification(context.Background(), "/a.txt", "modified", sent))
	require.NoError(t, st.Close())

	out, err := execute(t, "history", "--config", cfgPath, "--json")

	require.NoError(t, err)

	var rows []historyRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "/a.txt", rows[0].Path)
	assert.Equal(t, "modified", rows[0].ChangeType)
	assert.Equal(t, "2026-08-25T12:00:00Z", rows[0].SentAt)
}
