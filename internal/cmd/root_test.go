package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Help(t *testing.T) {
	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"--help"}))
	})

	for _, want := range []string{"signature-requests", "reusable-forms", "account", "team", "--dry-run"} {
		assert.Contains(t, output, want)
	}
}

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"acount"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
	assert.Contains(t, stderr, `Did you mean "account"?`)
}

func TestExecute_JSONConflictsWithOutput(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"account", "get", "--json", "-o", "text"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--json conflicts with --output text")
	})
}

func TestExecute_InvalidConcurrency(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"sr", "list", "--concurrency", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--concurrency must be >= 1")
	})
}

func TestExecute_NotConfigured(t *testing.T) {
	withSharedKeyring(t)

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"account", "get"})
		require.Error(t, err)
		assert.Equal(t, exitConfig, ExitCode(err))
	})
	assert.NotEmpty(t, stderr)
}

func TestVersionCommand(t *testing.T) {
	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version"}))
	})
	assert.Contains(t, output, "hellosign-cli version dev")
}

func TestVersionCommand_JSON(t *testing.T) {
	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version", "--no-update-check", "-o", "json"}))
	})

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &payload))
	assert.Equal(t, "dev", payload["version"])
	assert.NotContains(t, payload, "update")
}

func TestCacheClearAndPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envCacheDir, dir)
	t.Setenv("HELLOSIGN_CACHE_REDIS_URL", "")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "reusable_forms_0123456789ab.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"cache", "path"}))
	})
	assert.Contains(t, output, dir)
	assert.Contains(t, output, "reusable_forms_0123456789ab.json (2 bytes)")
	assert.NotContains(t, output, "notes.txt")

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"cache", "clear", "-o", "json"}))
	})
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &payload))
	assert.Equal(t, float64(1), payload["removed"])

	_, err := os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}
