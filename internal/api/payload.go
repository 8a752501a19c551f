package api

import (
	"fmt"
	"io"
)

// Attachment is a file uploaded as one multipart part. The reader belongs to
// the caller and is not closed.
type Attachment struct {
	Name     string
	Content  io.Reader
	MimeType string
}

func (a *Attachment) contentType() string {
	if a.MimeType == "" {
		return "application/octet-stream"
	}
	return a.MimeType
}

type Signer struct {
	Name         string
	EmailAddress string
	// Role is the reusable form role the signer fills. Ignored otherwise.
	Role string
	// Order is the signing position for ordered workflows.
	Order *int
	PIN   string
}

type CC struct {
	EmailAddress string
	Role         string
}

type CustomField struct {
	Name  string
	Value string
}

// KeyBy re-indexes items by the value of attr. The attribute is removed from
// each value, items without it are skipped, and a later item replaces an
// earlier one with the same key.
func KeyBy(items []map[string]any, attr string) map[string]any {
	out := make(map[string]any, len(items))
	for _, item := range items {
		raw, ok := item[attr]
		if !ok || raw == nil {
			continue
		}
		key, ok := raw.(string)
		if !ok {
			key = fmt.Sprint(raw)
		}
		if key == "" {
			continue
		}
		value := make(map[string]any, len(item))
		for k, v := range item {
			if k != attr {
				value[k] = v
			}
		}
		out[key] = value
	}
	return out
}

// SignatureRequest holds the parameters of a send. Setting ReusableFormID
// switches the request to the role-keyed reusable form endpoint.
type SignatureRequest struct {
	Title          string
	Subject        string
	Message        string
	Signers        []Signer
	CCs            []CC
	CustomFields   []CustomField
	Files          []Attachment
	FileURLs       []string
	ReusableFormID string
	TestMode       bool
	Metadata       map[string]string
}

func (r *SignatureRequest) UsesReusableForm() bool {
	return r.ReusableFormID != ""
}

// Path returns the send endpoint for the request's mode.
func (r *SignatureRequest) Path() string {
	if r.UsesReusableForm() {
		return "/signature_request/send_with_reusable_form"
	}
	return "/signature_request/send"
}

// Normalize builds the request body.
//
// Without a reusable form, signers are an ordered list, CCs a list of email
// addresses and files are numbered parts. With one, signers and CCs are keyed
// by role and custom fields map name to value.
func (r *SignatureRequest) Normalize() map[string]any {
	body := map[string]any{}
	setIfNotEmpty(body, "title", r.Title)
	setIfNotEmpty(body, "subject", r.Subject)
	setIfNotEmpty(body, "message", r.Message)
	if r.TestMode {
		body["test_mode"] = true
	}
	if len(r.Metadata) > 0 {
		body["metadata"] = r.Metadata
	}

	if r.UsesReusableForm() {
		body["reusable_form_id"] = r.ReusableFormID
		if len(r.Signers) > 0 {
			body["signers"] = KeyBy(signerMaps(r.Signers, true), "role")
		}
		if len(r.CCs) > 0 {
			body["ccs"] = KeyBy(ccMaps(r.CCs), "role")
		}
		if len(r.CustomFields) > 0 {
			fields := make(map[string]any, len(r.CustomFields))
			for _, f := range r.CustomFields {
				fields[f.Name] = f.Value
			}
			body["custom_fields"] = fields
		}
		return body
	}

	if len(r.Signers) > 0 {
		body["signers"] = mapsToAny(signerMaps(r.Signers, false))
	}
	if len(r.CCs) > 0 {
		emails := make([]string, 0, len(r.CCs))
		for _, cc := range r.CCs {
			emails = append(emails, cc.EmailAddress)
		}
		body["cc_email_addresses"] = emails
	}
	addFiles(body, r.Files, r.FileURLs)
	return body
}

// UnclaimedDraft is a draft the account owner finishes in the HelloSign UI.
type UnclaimedDraft struct {
	// Type is "send_document" or "request_signature".
	Type     string
	Subject  string
	Message  string
	Signers  []Signer
	CCs      []CC
	Files    []Attachment
	FileURLs []string
	TestMode bool
}

func (d *UnclaimedDraft) Normalize() map[string]any {
	body := map[string]any{}
	draftType := d.Type
	if draftType == "" {
		draftType = "send_document"
	}
	body["type"] = draftType
	setIfNotEmpty(body, "subject", d.Subject)
	setIfNotEmpty(body, "message", d.Message)
	if d.TestMode {
		body["test_mode"] = true
	}
	if len(d.Signers) > 0 {
		body["signers"] = mapsToAny(signerMaps(d.Signers, false))
	}
	if len(d.CCs) > 0 {
		emails := make([]string, 0, len(d.CCs))
		for _, cc := range d.CCs {
			emails = append(emails, cc.EmailAddress)
		}
		body["cc_email_addresses"] = emails
	}
	addFiles(body, d.Files, d.FileURLs)
	return body
}

func signerMaps(signers []Signer, withRole bool) []map[string]any {
	out := make([]map[string]any, 0, len(signers))
	for _, s := range signers {
		m := map[string]any{
			"name":          s.Name,
			"email_address": s.EmailAddress,
		}
		if withRole && s.Role != "" {
			m["role"] = s.Role
		}
		if !withRole && s.Order != nil {
			m["order"] = *s.Order
		}
		if s.PIN != "" {
			m["pin"] = s.PIN
		}
		out = append(out, m)
	}
	return out
}

func ccMaps(ccs []CC) []map[string]any {
	out := make([]map[string]any, 0, len(ccs))
	for _, cc := range ccs {
		m := map[string]any{"email_address": cc.EmailAddress}
		if cc.Role != "" {
			m["role"] = cc.Role
		}
		out = append(out, m)
	}
	return out
}

func mapsToAny(items []map[string]any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func addFiles(body map[string]any, files []Attachment, urls []string) {
	if len(files) > 0 {
		body["file"] = files
	}
	if len(urls) > 0 {
		body["file_url"] = urls
	}
}

func setIfNotEmpty(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}
