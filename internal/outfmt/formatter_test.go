package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	ID    string `json:"reusable_form_id"`
	Title string `json:"title"`
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Mode{"": Text, "text": Text, "json": JSON, "jsonl": JSONL, "ndjson": JSONL} {
		got, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := Parse("xml")
	assert.Error(t, err)
}

func TestFormatter_TextModeWritesTable(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)

	require.NoError(t, f.Output(map[string]any{"ignored": true}))
	assert.Empty(t, out.String())

	require.True(t, f.StartTable([]string{"ID", "TITLE"}))
	f.Row("f1", "NDA")
	require.NoError(t, f.EndTable())
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "NDA")

	f.Empty("No reusable forms found")
	assert.Equal(t, "No reusable forms found\n", errOut.String())
}

func TestFormatter_JSONWrapsSlices(t *testing.T) {
	var out bytes.Buffer
	ctx := WithMode(context.Background(), JSON)
	f := NewFormatter(ctx, &out, &out)

	assert.False(t, f.StartTable([]string{"ID"}))
	require.NoError(t, f.Output([]form{{ID: "f1", Title: "NDA"}}))
	assert.Contains(t, out.String(), `"items": [`)
	assert.Contains(t, out.String(), `"reusable_form_id": "f1"`)
}

func TestFormatter_NilSliceIsEmptyItems(t *testing.T) {
	var out bytes.Buffer
	ctx := WithCompact(WithMode(context.Background(), JSON), true)
	var forms []form
	require.NoError(t, NewFormatter(ctx, &out, &out).Output(forms))
	assert.Equal(t, `{"items":[]}`, strings.TrimSpace(out.String()))
}

func TestFormatter_Query(t *testing.T) {
	var out bytes.Buffer
	ctx := WithQuery(WithMode(context.Background(), JSON), ".items[].title")
	require.NoError(t, NewFormatter(ctx, &out, &out).Output([]form{{ID: "f1", Title: "NDA"}}))
	assert.Equal(t, `"NDA"`, strings.TrimSpace(out.String()))
}

func TestFormatter_JSONL(t *testing.T) {
	var out bytes.Buffer
	ctx := WithMode(context.Background(), JSONL)
	require.NoError(t, NewFormatter(ctx, &out, &out).Output([]form{{ID: "a"}, {ID: "b"}}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"reusable_form_id":"a","title":""}`, lines[0])
}

func TestWriteJSONDoesNotEscapeHTML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteJSON(&out, map[string]string{"url": "https://x/?a=1&b=2"}))
	assert.Contains(t, out.String(), "a=1&b=2")
}
