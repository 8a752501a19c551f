package api

import (
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestKeyBy(t *testing.T) {
	got := KeyBy([]map[string]any{
		{"name": "Jack", "email_address": "jack@hill.com", "role": "consultant"},
		{"name": "Jill", "email_address": "jill@hill.com", "role": "client"},
	}, "role")
	want := map[string]any{
		"consultant": map[string]any{"name": "Jack", "email_address": "jack@hill.com"},
		"client":     map[string]any{"name": "Jill", "email_address": "jill@hill.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyBy = %#v, want %#v", got, want)
	}
}

func TestKeyBy_LastWriteWins(t *testing.T) {
	got := KeyBy([]map[string]any{
		{"email_address": "first@x.com", "role": "lawyer"},
		{"email_address": "second@x.com", "role": "lawyer"},
	}, "role")
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if email := got["lawyer"].(map[string]any)["email_address"]; email != "second@x.com" {
		t.Errorf("expected later entry to win, got %v", email)
	}
}

func TestKeyBy_SkipsMissingAttribute(t *testing.T) {
	items := []map[string]any{
		{"email_address": "norole@x.com"},
		{"email_address": "lawyer@x.com", "role": "lawyer"},
	}
	got := KeyBy(items, "role")
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %#v", got)
	}
	if _, ok := items[1]["role"]; !ok {
		t.Error("KeyBy must not modify its input")
	}
}

func TestSignatureRequest_PlainMode(t *testing.T) {
	order := 0
	req := &SignatureRequest{
		Title:   "Lease",
		Subject: "Sign this",
		Message: "You must sign this.",
		CCs:     []CC{{EmailAddress: "lawyer@lawfirm.com"}, {EmailAddress: "spouse@family.com"}},
		Signers: []Signer{
			{Name: "Jack", EmailAddress: "jack@hill.com", Order: &order, Role: "ignored"},
			{Name: "Jill", EmailAddress: "jill@hill.com"},
		},
		FileURLs: []string{"https://example.com/lease.pdf"},
		TestMode: true,
	}
	if req.UsesReusableForm() {
		t.Fatal("expected plain mode")
	}
	if req.Path() != "/signature_request/send" {
		t.Errorf("Path = %q", req.Path())
	}

	form, err := flattenBody(req.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := url.Values{
		"title":                     {"Lease"},
		"subject":                   {"Sign this"},
		"message":                   {"You must sign this."},
		"test_mode":                 {"1"},
		"signers[0][name]":          {"Jack"},
		"signers[0][email_address]": {"jack@hill.com"},
		"signers[0][order]":         {"0"},
		"signers[1][name]":          {"Jill"},
		"signers[1][email_address]": {"jill@hill.com"},
		"cc_email_addresses[0]":     {"lawyer@lawfirm.com"},
		"cc_email_addresses[1]":     {"spouse@family.com"},
		"file_url[0]":               {"https://example.com/lease.pdf"},
	}
	if !reflect.DeepEqual(form.Values, want) {
		t.Errorf("wire form =\n%v\nwant\n%v", form.Values, want)
	}
}

func TestSignatureRequest_PlainModeFiles(t *testing.T) {
	req := &SignatureRequest{
		Files: []Attachment{
			{Name: "test.txt", Content: strings.NewReader("a"), MimeType: "text/plain"},
			{Name: "test.jpg", Content: strings.NewReader("b")},
		},
	}
	form, err := flattenBody(req.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(form.Files) != 2 {
		t.Fatalf("expected 2 file parts, got %d", len(form.Files))
	}
	if form.Files[0].Field != "file[0]" || form.Files[1].Field != "file[1]" {
		t.Errorf("unexpected fields %q, %q", form.Files[0].Field, form.Files[1].Field)
	}
	if got := form.Files[1].Attachment.contentType(); got != "application/octet-stream" {
		t.Errorf("default content type = %q", got)
	}
}

func TestSignatureRequest_ReusableFormMode(t *testing.T) {
	req := &SignatureRequest{
		ReusableFormID: "form_id",
		Title:          "Lease",
		Subject:        "Sign this",
		Message:        "You must sign this.",
		CCs: []CC{
			{EmailAddress: "lawyer@lawfirm.com", Role: "lawyer"},
			{EmailAddress: "accountant@llc.com", Role: "accountant"},
		},
		Signers: []Signer{
			{Name: "Jack", EmailAddress: "jack@hill.com", Role: "consultant"},
			{Name: "Jill", EmailAddress: "jill@hill.com", Role: "client"},
		},
		CustomFields: []CustomField{
			{Name: "cost", Value: "$20,000"},
			{Name: "time", Value: "two weeks"},
		},
	}
	if req.Path() != "/signature_request/send_with_reusable_form" {
		t.Errorf("Path = %q", req.Path())
	}

	form, err := flattenBody(req.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"reusable_form_id": "form_id",
		"title":            "Lease",
		"subject":          "Sign this",
		"message":          "You must sign this.",
		"ccs": map[string]any{
			"lawyer":     map[string]any{"email_address": "lawyer@lawfirm.com"},
			"accountant": map[string]any{"email_address": "accountant@llc.com"},
		},
		"signers": map[string]any{
			"consultant": map[string]any{"name": "Jack", "email_address": "jack@hill.com"},
			"client":     map[string]any{"name": "Jill", "email_address": "jill@hill.com"},
		},
		"custom_fields": map[string]any{
			"cost": "$20,000",
			"time": "two weeks",
		},
	}
	if got := DecodeForm(form.Values); !reflect.DeepEqual(got, want) {
		t.Errorf("decoded form =\n%#v\nwant\n%#v", got, want)
	}
}

func TestSignatureRequest_DuplicateRoles(t *testing.T) {
	req := &SignatureRequest{
		ReusableFormID: "form_id",
		Signers: []Signer{
			{Name: "Jack", EmailAddress: "jack@hill.com", Role: "client"},
			{Name: "Jill", EmailAddress: "jill@hill.com", Role: "client"},
		},
		CustomFields: []CustomField{{Name: "cost", Value: "1"}, {Name: "cost", Value: "2"}},
	}
	body := req.Normalize()
	signers := body["signers"].(map[string]any)
	if len(signers) != 1 {
		t.Fatalf("expected one signer entry, got %d", len(signers))
	}
	if name := signers["client"].(map[string]any)["name"]; name != "Jill" {
		t.Errorf("expected Jill to win, got %v", name)
	}
	if cost := body["custom_fields"].(map[string]any)["cost"]; cost != "2" {
		t.Errorf("expected last custom field to win, got %v", cost)
	}
}

func TestUnclaimedDraft_Normalize(t *testing.T) {
	draft := &UnclaimedDraft{
		Signers:  []Signer{{Name: "Jack", EmailAddress: "jack@hill.com"}},
		FileURLs: []string{"https://example.com/a.pdf"},
	}
	body := draft.Normalize()
	if body["type"] != "send_document" {
		t.Errorf("default type = %v", body["type"])
	}
	if _, ok := body["test_mode"]; ok {
		t.Error("test_mode should be omitted when false")
	}
	if len(body["signers"].([]any)) != 1 {
		t.Errorf("unexpected signers %#v", body["signers"])
	}
}
