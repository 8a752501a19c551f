package dryrun

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/hellosign/hellosign-cli/internal/api"
)

func TestWithDryRun(t *testing.T) {
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestPreview_ReusableFormSend(t *testing.T) {
	req := &api.SignatureRequest{
		ReusableFormID: "form_id",
		Signers:        []api.Signer{{Name: "Jack", EmailAddress: "jack@hill.com", Role: "client"}},
		CustomFields:   []api.CustomField{{Name: "cost", Value: "$20,000"}},
	}
	p, err := NewPreview(http.MethodPost, req.Path(), api.RequestOptions{Body: req.Normalize()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	p.Write(&buf)
	out := buf.String()
	for _, want := range []string{
		"[DRY-RUN] Would POST /v3/signature_request/send_with_reusable_form",
		"signers[client][email_address]: jack@hill.com",
		"custom_fields[cost]: $20,000",
		"Nothing sent",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	body := p.JSON()["body"].(map[string]any)
	signers := body["signers"].(map[string]any)
	if signers["client"].(map[string]any)["name"] != "Jack" {
		t.Errorf("unexpected JSON body %#v", body)
	}
}

func TestPreview_NoAuthAndParams(t *testing.T) {
	p, err := NewPreview(http.MethodGet, "/signature_request/list", api.RequestOptions{
		Params:          map[string]string{"page": "1"},
		AuthNotRequired: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	p.Write(&buf)
	if !strings.Contains(buf.String(), "(no authentication)") || !strings.Contains(buf.String(), "?page=1") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if _, ok := p.JSON()["body"]; ok {
		t.Error("expected no body")
	}
}

func TestPreview_InvalidBody(t *testing.T) {
	if _, err := NewPreview(http.MethodPost, "/x", api.RequestOptions{Body: 3}); err == nil {
		t.Error("expected error")
	}
}
