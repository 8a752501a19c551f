package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withReleaseServer(t *testing.T, status int, body string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	old := ReleasesURL
	ReleasesURL = server.URL
	t.Cleanup(func() { ReleasesURL = old })
}

func TestCheckForUpdate_NewerAvailable(t *testing.T) {
	withReleaseServer(t, http.StatusOK, `{"tag_name": "v1.3.0", "html_url": "https://github.com/hellosign/hellosign-cli/releases/v1.3.0"}`)

	result := CheckForUpdate(context.Background(), "1.2.0")
	require.NotNil(t, result)
	assert.True(t, result.UpdateAvailable)
	assert.Equal(t, "1.3.0", result.LatestVersion)
	assert.Contains(t, result.UpdateURL, "v1.3.0")
}

func TestCheckForUpdate_UpToDate(t *testing.T) {
	withReleaseServer(t, http.StatusOK, `{"tag_name": "v1.2.0"}`)

	result := CheckForUpdate(context.Background(), "v1.2.0")
	require.NotNil(t, result)
	assert.False(t, result.UpdateAvailable)
}

func TestCheckForUpdate_NilCases(t *testing.T) {
	assert.Nil(t, CheckForUpdate(context.Background(), "dev"))
	assert.Nil(t, CheckForUpdate(context.Background(), ""))

	withReleaseServer(t, http.StatusNotFound, `{"message": "Not Found"}`)
	assert.Nil(t, CheckForUpdate(context.Background(), "1.0.0"))
}

func TestCheckForUpdate_SkipsPrerelease(t *testing.T) {
	withReleaseServer(t, http.StatusOK, `{"tag_name": "v2.0.0-rc.1", "prerelease": true}`)
	assert.Nil(t, CheckForUpdate(context.Background(), "1.0.0"))
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "v1.0.0", normalizeVersion("1.0.0"))
	assert.Equal(t, "v1.0.0", normalizeVersion(" v1.0.0 "))
}
