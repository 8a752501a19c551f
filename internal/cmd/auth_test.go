package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellosign/hellosign-cli/internal/config"
)

func TestAuthLogin_VerifiesAndSaves(t *testing.T) {
	withSharedKeyring(t)

	var user, pass string
	handler := newRouteHandler().
		On("GET", "/v3/account", func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ = r.BasicAuth()
			jsonResponse(200, `{"account": {"account_id": "a1", "email_address": "jill@example.com"}}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--email", "jill@example.com", "--password", "pw-123"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Authentication credentials saved successfully!")
	assert.Equal(t, "jill@example.com", user)
	assert.Equal(t, "pw-123", pass)

	account, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "jill@example.com", account.EmailAddress)
	assert.Equal(t, "pw-123", account.Password)
}

func TestAuthLogin_RejectedCredentialsNotSaved(t *testing.T) {
	withSharedKeyring(t)

	handler := newRouteHandler().
		On("GET", "/v3/account", jsonResponse(401, `{"error": {"error_name": "unauthorized", "error_msg": "Unauthorized api key"}}`))
	setupTestEnvWithHandler(t, handler)

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--email", "jill@example.com", "--password", "wrong"})
		require.Error(t, err)
		assert.Equal(t, exitAuth, ExitCode(err))
	})
	assert.Contains(t, stderr, "Unauthorized api key")

	_, err := config.LoadProfile("default")
	assert.ErrorIs(t, err, config.ErrNotConfigured)
}

func TestAuthLogin_PasswordStdinNoVerify(t *testing.T) {
	withSharedKeyring(t)
	withStdin(t, "from-stdin\n")

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--email", "jill@example.com", "--password-stdin", "--no-verify", "--profile", "work"})
		require.NoError(t, err)
	})

	account, err := config.LoadProfile("work")
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", account.Password)
}

func TestAuthLogin_RequiresEmail(t *testing.T) {
	withSharedKeyring(t)

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--password", "pw", "--no-verify"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--email is required")
	})
}

func TestAuthStatus_NotAuthenticated(t *testing.T) {
	withSharedKeyring(t)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "status"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Not authenticated.")
}

func TestAuthStatus_EnvCredentialsJSON(t *testing.T) {
	withSharedKeyring(t)
	env := setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "status", "-o", "json"})
		require.NoError(t, err)
	})

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &payload))
	assert.Equal(t, true, payload["authenticated"])
	assert.Equal(t, testEmail, payload["email_address"])
	assert.Equal(t, "env", payload["source"])
	assert.Equal(t, env.server.URL, payload["base_url"])
	assert.Equal(t, maskSecret(testPassword), payload["password"])
	assert.NotContains(t, output, testPassword)
}

func TestAuthStatus_Keychain(t *testing.T) {
	withSharedKeyring(t)
	require.NoError(t, config.SaveProfile("default", config.Account{EmailAddress: "jill@example.com", Password: "pw-123456"}))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "status"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Email: jill@example.com")
	assert.Contains(t, output, "Source: keychain")
	assert.Contains(t, output, "Profile: default")
	assert.NotContains(t, output, "pw-123456")
}

func TestAuthLogout(t *testing.T) {
	withSharedKeyring(t)
	require.NoError(t, config.SaveProfile("default", config.Account{EmailAddress: "jill@example.com", Password: "pw"}))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "logout"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Removed profile default")

	_, err := config.LoadProfile("default")
	assert.ErrorIs(t, err, config.ErrNotConfigured)
}

func TestAuthProfilesAndUse(t *testing.T) {
	withSharedKeyring(t)
	require.NoError(t, config.SaveProfile("default", config.Account{EmailAddress: "a@example.com", Password: "pw"}))
	require.NoError(t, config.SaveProfile("work", config.Account{EmailAddress: "b@example.com", Password: "pw"}))

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "use", "work"}))
	})
	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "work", current)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "profiles"}))
	})
	assert.Contains(t, output, "* work")
	assert.Contains(t, output, "  default")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "a***e", maskSecret("abcde"))
}

func TestAuthLogin_BrowserConflictsWithFlags(t *testing.T) {
	withSharedKeyring(t)

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--browser", "--email", "jill@example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--browser cannot be combined")
	})
}

func TestAuthLogin_EnvFile(t *testing.T) {
	withSharedKeyring(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "HELLOSIGN_EMAIL_ADDRESS=jill@example.com\nHELLOSIGN_PASSWORD=\"from-file\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--env-file", path, "--no-verify"})
		require.NoError(t, err)
	})

	account, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "jill@example.com", account.EmailAddress)
	assert.Equal(t, "from-file", account.Password)
}

func TestAuthLogin_EnvFileMissing(t *testing.T) {
	withSharedKeyring(t)

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read --env-file")
	})
}
