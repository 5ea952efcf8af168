package cmd

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/remote"
	"github.com/driftwatch/driftwatch/internal/store"
)

func TestStatusCmd_EmptySnapshot(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	out, err := execute(t, "status", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Tracked files:   0")
	assert.Contains(t, out, "Last checked:    never")
	assert.Contains(t, out, "Alerts recorded: 0")
}

func TestStatusCmd_JSON(t *testing.T) {
	cfgPath, statePath := writeTestConfig(t)

	// Seed one tracked file
	st, err := store.Open(statePath)
	require.NoError(t, err)
	observed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertAll(context.Background(), []remote.FileDescriptor{
		{Path: "/a.txt", Name: "a.txt", Size: 2048, ModTime: observed},
	}, observed))
	require.NoError(t, st.Close())

	out, err := execute(t, "status", "--config", cfgPath, "--json")

	require.NoError(t, err)

	var got statusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, statePath, got.StatePath)
	assert.Equal(t, int64(1), got.Files)
	assert.Equal(t, int64(2048), got.TotalSize)
	assert.Equal(t, "2026-08-25T12:00:00Z", got.LastChecked)
	assert.Equal(t, int64(0), got.Notifications)
}
