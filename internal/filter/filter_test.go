package filter

import (
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	data := map[string]any{
		"signature_request": map[string]any{
			"signature_request_id": "sr1",
			"is_complete":          false,
		},
	}
	got, err := Apply(data, ".signature_request.signature_request_id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sr1" {
		t.Errorf("got %v", got)
	}
}

func TestApply_EmptyExpression(t *testing.T) {
	data := map[string]any{"a": 1}
	got, err := Apply(data, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(map[string]any)["a"] != 1 {
		t.Errorf("expected data unchanged, got %v", got)
	}
}

func TestApply_MultipleResults(t *testing.T) {
	data := []any{map[string]any{"title": "a"}, map[string]any{"title": "b"}}
	got, err := Apply(data, ".[].title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, ok := got.([]any)
	if !ok || len(results) != 2 || results[0] != "a" || results[1] != "b" {
		t.Errorf("got %#v", got)
	}
}

func TestApply_ListEnvelopeFallback(t *testing.T) {
	data := map[string]any{
		"list_info":      map[string]any{"page": 1},
		"reusable_forms": []any{map[string]any{"title": "NDA"}},
	}
	got, err := Apply(data, ".[] | .title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "NDA" {
		t.Errorf("got %#v", got)
	}
}

func TestApply_ShellEscapes(t *testing.T) {
	data := map[string]any{"status_code": "signed"}
	got, err := Apply(data, `.status_code \!= "signed"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != false {
		t.Errorf("got %v", got)
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	_, err := Apply(map[string]any{}, ".[")
	if err == nil || !strings.Contains(err.Error(), "invalid filter expression") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyToJSON(t *testing.T) {
	out, err := ApplyToJSON([]byte(`{"account": {"email_address": "a@b.com"}}`), ".account.email_address")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(out)) != `"a@b.com"` {
		t.Errorf("got %s", out)
	}
	if _, err := ApplyToJSON([]byte(`not json`), "."); err == nil {
		t.Error("expected invalid JSON error")
	}
}
