package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// writeTestConfig writes a minimal valid config into a temp dir and
// returns the config and state database paths.
func writeTestConfig(t *testing.T) (cfgPath, statePath string) {
	t.Helper()

	dir := t.TempDir()
	statePath = filepath.Join(dir, "state.db")
	cfgPath = filepath.Join(dir, "driftwatch.yaml")

	content := fmt.Sprintf("remote:\n  url: http://localhost:8080\nstate:\n  path: %s\n", statePath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, statePath
}

func TestRootCmd_HelpListsSubcommands(t *testing.T) {
	out, err := execute(t, "--help")

	require.NoError(t, err)
	for _, sub := range []string{"run", "init", "status", "history", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")

	require.Error(t, err)
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "driftwatch version")
}

func TestRunCmd_MissingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}
