package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPICommand_Get(t *testing.T) {
	var page string
	handler := newRouteHandler().
		On("GET", "/v3/signature_request/list", func(w http.ResponseWriter, r *http.Request) {
			page = r.URL.Query().Get("page")
			w.Header().Set("X-Ratelimit-Limit", "100")
			jsonResponse(200, `{"list_info": {"page": 2}, "signature_requests": []}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"api", "/signature_request/list", "-p", "page=2", "--include"}))
	})

	assert.Equal(t, "2", page)
	assert.Contains(t, output, "HTTP 200")
	assert.Contains(t, output, "X-Ratelimit-Limit: 100")
	assert.Contains(t, output, `"page": 2`)
}

func TestAPICommand_PostFieldsFlattened(t *testing.T) {
	var rec recordedRequest
	handler := newRouteHandler().
		On("POST", "/v3/signature_request/send_with_reusable_form", formRecorder(&rec, jsonResponse(200, sentRequestJSON)))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"api", "/signature_request/send_with_reusable_form", "-X", "post",
			"-d", `{"reusable_form_id": "abc", "signers": {"Client": {"name": "Jack", "email_address": "jack@example.com"}}}`,
			"-f", "subject=Hello",
			"-F", "test_mode=true",
			"-o", "json", "--jq", ".signature_request.signature_request_id",
		}))
	})

	assert.Equal(t, "application/x-www-form-urlencoded", rec.ContentType)
	assert.Equal(t, []string{"abc"}, rec.Form["reusable_form_id"])
	assert.Equal(t, []string{"Jack"}, rec.Form["signers[Client][name]"])
	assert.Equal(t, []string{"Hello"}, rec.Form["subject"])
	assert.Equal(t, []string{"1"}, rec.Form["test_mode"])
	assert.Equal(t, testEmail, rec.User)

	var id string
	require.NoError(t, json.Unmarshal([]byte(output), &id))
	assert.NotEmpty(t, id)
}

func TestAPICommand_AttachSendsMultipart(t *testing.T) {
	var rec recordedRequest
	handler := newRouteHandler().
		On("POST", "/v3/signature_request/send", formRecorder(&rec, jsonResponse(200, sentRequestJSON)))
	setupTestEnvWithHandler(t, handler)

	doc := writeTempFile(t, "nda.pdf", "%PDF-1.4")
	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"api", "/signature_request/send", "-X", "POST",
			"-f", "signers[0][email_address]=jack@example.com",
			"--attach", "file[0]=" + doc,
			"--silent",
		}))
	})

	assert.Contains(t, rec.ContentType, "multipart/form-data")
	assert.Equal(t, "nda.pdf", rec.Files["file[0]"])
	assert.Equal(t, []string{"jack@example.com"}, rec.Form["signers[0][email_address]"])
}

func TestAPICommand_NoAuth(t *testing.T) {
	var rec recordedRequest
	handler := newRouteHandler().
		On("POST", "/v3/account/create", formRecorder(&rec, jsonResponse(200, `{"account": {"account_id": "n1"}}`)))
	setupTestEnvWithHandler(t, handler)

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"api", "/account/create", "-X", "POST", "--no-auth", "-f", "email_address=new@example.com",
		}))
	})
	assert.False(t, rec.HasAuth)
	assert.Equal(t, []string{"new@example.com"}, rec.Form["email_address"])
}

func TestAPICommand_DryRun(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"api", "/team/create", "-X", "POST", "-f", "name=Legal", "--dry-run", "-o", "json",
		}))
	})

	var preview map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &preview))
	assert.Equal(t, true, preview["dry_run"])
	assert.Equal(t, "/v3/team/create", preview["path"])
	assert.Equal(t, map[string]any{"name": "Legal"}, preview["body"])
}

func TestAPICommand_Validation(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"api", "/account", "-X", "DELETE"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be GET or POST")

		err = Execute(context.Background(), []string{"api", "/account", "-d", "{}", "-i", "body.json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot use both --body and --input")
	})
}
