package api

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"signature_request_id", "signature_request_id"},
		{"SignatureRequestId", "signature_request_id"},
		{"isComplete", "is_complete"},
		{"signer-name", "signer_name"},
		{"  Email Address ", "email_address"},
		{"HTTPStatus", "http_status"},
		{"page2Size", "page2_size"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalKey(tt.in); got != tt.want {
			t.Errorf("CanonicalKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalKey_Interned(t *testing.T) {
	first := CanonicalKey("listInfo")
	second := CanonicalKey("listInfo")
	if first != second || first != "list_info" {
		t.Errorf("unexpected keys %q, %q", first, second)
	}
}

func TestDecodeJSON(t *testing.T) {
	body, err := DecodeJSON([]byte(`{"ListInfo": {"numPages": 3}, "items": [{"Title": "a"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := body.(Object)
	if !ok {
		t.Fatalf("expected Object, got %T", body)
	}
	if n, ok := obj.Object("list_info").Int("num_pages"); !ok || n != 3 {
		t.Errorf("num_pages = %d, %v", n, ok)
	}
	items := obj.Array("items")
	if len(items) != 1 || items[0].(Object).String("title") != "a" {
		t.Errorf("unexpected items %#v", items)
	}
	if _, ok := obj.Object("list_info")["num_pages"].(json.Number); !ok {
		t.Error("expected numbers to stay json.Number")
	}
}

func TestDecodeJSON_TrailingData(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{} {}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestLooksLikeJSON(t *testing.T) {
	tests := []struct {
		contentType string
		raw         string
		want        bool
	}{
		{"application/json", `{}`, true},
		{"application/json; charset=utf-8", `[]`, true},
		{"application/problem+json", `{}`, true},
		{"", `{"a":1}`, true},
		{"text/plain", `{"a":1}`, true},
		{"application/pdf", `%PDF`, false},
		{"text/html", `{`, false},
		{"application/json", ``, false},
	}
	for _, tt := range tests {
		if got := looksLikeJSON(tt.contentType, []byte(tt.raw)); got != tt.want {
			t.Errorf("looksLikeJSON(%q, %q) = %v, want %v", tt.contentType, tt.raw, got, tt.want)
		}
	}
}

func TestResponseDecode(t *testing.T) {
	body, err := DecodeJSON([]byte(`{"list_info": {"page": 1, "num_pages": 2}, "signature_requests": [{"signature_request_id": "sr1", "created_at": 1700000000}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := &Response{StatusCode: http.StatusOK, Body: body}
	var list SignatureRequestList
	if err := resp.Decode(&list); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !list.ListInfo.HasMore() {
		t.Error("expected more pages")
	}
	if len(list.SignatureRequests) != 1 || list.SignatureRequests[0].CreatedAt != 1700000000 {
		t.Errorf("unexpected list %+v", list.SignatureRequests)
	}
}

func TestResponseWarnings(t *testing.T) {
	body, err := DecodeJSON([]byte(`{"warnings": [{"warning_msg": "Parameter ignored", "warning_name": "unsupported"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	warnings := (&Response{Body: body}).Warnings()
	if len(warnings) != 1 || warnings[0].Name != "unsupported" || warnings[0].Message != "Parameter ignored" {
		t.Errorf("unexpected warnings %+v", warnings)
	}
}
