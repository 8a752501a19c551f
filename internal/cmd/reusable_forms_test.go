package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formJSON = `{
	"reusable_form": {
		"reusable_form_id": "c26b8a16784a872da37ea946b9ddec7c1e11dff6",
		"title": "Mutual NDA",
		"signer_roles": [{"name": "Client", "order": 0}],
		"cc_roles": [{"name": "Lawyer"}],
		"custom_fields": [{"name": "Cost", "type": "text"}],
		"accounts": [{"account_id": "a1", "email_address": "jill@example.com"}],
		"is_creator": true
	}
}`

func TestReusableFormsList(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", jsonResponse(200, formsListJSON))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"forms", "list"}))
	})

	assert.Contains(t, output, "Mutual NDA")
	assert.Contains(t, output, "Client")
	assert.Contains(t, output, "Lawyer")
	assert.Contains(t, output, "Purchase Order")
}

func TestReusableFormsList_AllUsesCache(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", jsonResponse(200, formsListJSON))
	setupTestEnvWithHandler(t, handler)

	run := func(args ...string) []any {
		output := captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), args))
		})
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(output), &payload), output)
		forms, _ := payload["reusable_forms"].([]any)
		return forms
	}

	assert.Len(t, run("forms", "list", "--all", "-o", "json"), 2)
	assert.Len(t, run("forms", "list", "--all", "-o", "json"), 2)
	assert.Equal(t, 1, handler.Calls("GET", "/v3/reusable_form/list"))

	assert.Len(t, run("forms", "list", "--all", "--refresh", "-o", "json"), 2)
	assert.Equal(t, 2, handler.Calls("GET", "/v3/reusable_form/list"))
}

func TestReusableFormsList_AllPages(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				jsonResponse(200, `{"list_info": {"page": 2, "num_pages": 2}, "reusable_forms": [{"reusable_form_id": "f2", "title": "Second"}]}`)(w, r)
				return
			}
			jsonResponse(200, `{"list_info": {"page": 1, "num_pages": 2}, "reusable_forms": [{"reusable_form_id": "f1", "title": "First"}]}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"forms", "list", "--all", "-o", "json", "--jq", "[.reusable_forms[].title]"}))
	})

	var titles []string
	require.NoError(t, json.Unmarshal([]byte(output), &titles), output)
	assert.Equal(t, []string{"First", "Second"}, titles)
}

func TestReusableFormsGet_ByTitle(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", jsonResponse(200, formsListJSON)).
		On("GET", "/v3/reusable_form/c26b8a16784a872da37ea946b9ddec7c1e11dff6", jsonResponse(200, formJSON))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"forms", "get", "Mutual"}))
	})

	assert.Contains(t, output, "c26b8a16784a872da37ea946b9ddec7c1e11dff6")
	assert.Contains(t, output, "Cost (text)")
	assert.Contains(t, output, "jill@example.com")
}

func TestReusableFormsGet_NoMatch(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", jsonResponse(200, formsListJSON))
	setupTestEnvWithHandler(t, handler)

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"forms", "get", "zzzz"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no match found")
	})
}

func TestReusableFormsAddUser_InvalidatesCache(t *testing.T) {
	var rec recordedRequest
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", jsonResponse(200, formsListJSON)).
		On("POST", "/v3/reusable_form/add_user/c26b8a16784a872da37ea946b9ddec7c1e11dff6", formRecorder(&rec, jsonResponse(200, formJSON)))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"forms", "add-user", "Mutual NDA", "--email", "bob@example.com"}))
		require.NoError(t, Execute(context.Background(), []string{"forms", "get", "Mutual NDA", "-o", "json"}))
	})

	assert.Contains(t, output, "Granted access for bob@example.com to reusable form")
	assert.Equal(t, []string{"bob@example.com"}, rec.Form["email_address"])
	// add-user resolved the title (1), then cleared the cache, so get listed again (2)
	assert.Equal(t, 2, handler.Calls("GET", "/v3/reusable_form/list"))
}

func TestReusableFormsRemoveUser_DryRun(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"forms", "remove-user", "c26b8a16784a872da37ea946b9ddec7c1e11dff6", "--email", "bob@example.com", "--dry-run",
		}))
	})

	assert.Contains(t, output, "Would POST /v3/reusable_form/remove_user/c26b8a16784a872da37ea946b9ddec7c1e11dff6")
	assert.Contains(t, output, "email_address: bob@example.com")
}

func TestReusableFormsList_RateLimit(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v3/reusable_form/list", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Ratelimit-Limit", "2000")
			w.Header().Set("X-Ratelimit-Limit-Remaining", "1500")
			jsonResponse(200, formsListJSON)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"forms", "list", "-o", "json", "--jq", ".rate_limit"}))
	})
	var rateLimit map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &rateLimit), output)
	assert.Equal(t, float64(1500), rateLimit["remaining"])
	assert.NotContains(t, rateLimit, "reset_at")

	stderr := captureStderr(t, func() {
		_ = captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"forms", "list"}))
		})
	})
	assert.NotContains(t, stderr, "API requests left")
}
