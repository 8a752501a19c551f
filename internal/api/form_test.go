package api

import (
	"net/url"
	"reflect"
	"testing"
)

func TestFlattenBody(t *testing.T) {
	order := 1
	form, err := flattenBody(map[string]any{
		"title":     "Lease",
		"test_mode": true,
		"signers": []any{
			map[string]any{"name": "Jack", "email_address": "jack@hill.com", "order": order},
		},
		"ccs": map[string]any{
			"lawyer": map[string]any{"email_address": "lawyer@lawfirm.com"},
		},
		"metadata":           map[string]string{"ref": "A-1"},
		"cc_email_addresses": []string{"a@b.com", "c@d.com"},
		"skipped":            nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := url.Values{
		"title":                      {"Lease"},
		"test_mode":                  {"1"},
		"signers[0][name]":           {"Jack"},
		"signers[0][email_address]":  {"jack@hill.com"},
		"signers[0][order]":          {"1"},
		"ccs[lawyer][email_address]": {"lawyer@lawfirm.com"},
		"metadata[ref]":              {"A-1"},
		"cc_email_addresses[0]":      {"a@b.com"},
		"cc_email_addresses[1]":      {"c@d.com"},
	}
	if !reflect.DeepEqual(form.Values, want) {
		t.Errorf("flattenBody =\n%v\nwant\n%v", form.Values, want)
	}
	if len(form.Files) != 0 {
		t.Errorf("expected no files, got %d", len(form.Files))
	}
}

func TestFlattenBody_Errors(t *testing.T) {
	if _, err := flattenBody([]string{"a"}); err == nil {
		t.Error("expected error for slice body")
	}
	if _, err := flattenBody(map[string]any{"bad": struct{}{}}); err == nil {
		t.Error("expected error for struct value")
	}
}

func TestDecodeForm_RoundTrip(t *testing.T) {
	body := map[string]any{
		"title": "Lease",
		"signers": []any{
			map[string]any{"name": "Jack", "email_address": "jack@hill.com"},
			map[string]any{"name": "Jill", "email_address": "jill@hill.com"},
		},
		"cc_email_addresses": []any{"lawyer@lawfirm.com", "spouse@family.com"},
		"custom_fields":      map[string]any{"cost": "$20,000"},
	}
	form, err := flattenBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := DecodeForm(form.Values); !reflect.DeepEqual(got, body) {
		t.Errorf("DecodeForm =\n%#v\nwant\n%#v", got, body)
	}
}

func TestDecodeForm_SparseIndexesStayObjects(t *testing.T) {
	got := DecodeForm(url.Values{"x[0]": {"a"}, "x[2]": {"b"}})
	want := map[string]any{"x": map[string]any{"0": "a", "2": "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeForm = %#v, want %#v", got, want)
	}
}

func TestSplitFormKey(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"title", []string{"title"}},
		{"signers[0][name]", []string{"signers", "0", "name"}},
		{"ccs[lawyer][email_address]", []string{"ccs", "lawyer", "email_address"}},
		{"broken[abc", []string{"broken[abc"}},
	}
	for _, tt := range tests {
		if got := splitFormKey(tt.key); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFormKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
