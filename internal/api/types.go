package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Signature status codes reported per signer.
const (
	StatusAwaitingSignature = "awaiting_signature"
	StatusSigned            = "signed"
	StatusDeclined          = "declined"
	StatusErrorUnknown      = "error_unknown"
)

// FlexInt handles JSON numbers that may come as strings or integers
type FlexInt int64

func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*fi = FlexInt(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*fi = 0
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*fi = FlexInt(i)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexInt", data)
}

// Time converts a Unix timestamp field. Zero stays the zero time.
func (fi FlexInt) Time() time.Time {
	if fi == 0 {
		return time.Time{}
	}
	return time.Unix(int64(fi), 0)
}

// ListInfo describes the page a list call returned.
type ListInfo struct {
	Page       int `json:"page"`
	NumPages   int `json:"num_pages"`
	NumResults int `json:"num_results"`
	PageSize   int `json:"page_size"`
}

// HasMore reports whether a later page exists.
func (l ListInfo) HasMore() bool {
	return l.Page < l.NumPages
}

type Signature struct {
	SignatureID        string  `json:"signature_id"`
	SignerEmailAddress string  `json:"signer_email_address"`
	SignerName         string  `json:"signer_name"`
	SignerRole         string  `json:"signer_role,omitempty"`
	Order              *int    `json:"order,omitempty"`
	StatusCode         string  `json:"status_code"`
	SignedAt           FlexInt `json:"signed_at,omitempty"`
	LastViewedAt       FlexInt `json:"last_viewed_at,omitempty"`
	LastRemindedAt     FlexInt `json:"last_reminded_at,omitempty"`
	HasPIN             bool    `json:"has_pin,omitempty"`
}

type SignatureRequestInfo struct {
	SignatureRequestID    string            `json:"signature_request_id"`
	Title                 string            `json:"title"`
	Subject               string            `json:"subject"`
	Message               string            `json:"message"`
	TestMode              bool              `json:"test_mode"`
	IsComplete            bool              `json:"is_complete"`
	IsDeclined            bool              `json:"is_declined"`
	HasError              bool              `json:"has_error"`
	RequesterEmailAddress string            `json:"requester_email_address"`
	CreatedAt             FlexInt           `json:"created_at"`
	SigningURL            string            `json:"signing_url,omitempty"`
	DetailsURL            string            `json:"details_url,omitempty"`
	FilesURL              string            `json:"files_url,omitempty"`
	CCEmailAddresses      []string          `json:"cc_email_addresses,omitempty"`
	Signatures            []Signature       `json:"signatures"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// Status summarizes the request the way the web UI does.
func (s *SignatureRequestInfo) Status() string {
	switch {
	case s.HasError:
		return "error"
	case s.IsDeclined || s.hasDeclinedSignature():
		return StatusDeclined
	case s.IsComplete:
		return "complete"
	default:
		return "pending"
	}
}

func (s *SignatureRequestInfo) hasDeclinedSignature() bool {
	for _, sig := range s.Signatures {
		if sig.StatusCode == StatusDeclined {
			return true
		}
	}
	return false
}

// PendingSigners returns the signatures still awaiting a signature.
func (s *SignatureRequestInfo) PendingSigners() []Signature {
	var out []Signature
	for _, sig := range s.Signatures {
		if sig.StatusCode == StatusAwaitingSignature {
			out = append(out, sig)
		}
	}
	return out
}

type SignatureRequestList struct {
	ListInfo          ListInfo               `json:"list_info"`
	SignatureRequests []SignatureRequestInfo `json:"signature_requests"`
}

type FormRole struct {
	Name  string `json:"name"`
	Order *int   `json:"order,omitempty"`
}

type FormField struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type FormDocument struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

type AccountRef struct {
	AccountID    string `json:"account_id"`
	EmailAddress string `json:"email_address"`
	RoleCode     string `json:"role_code,omitempty"`
}

type ReusableForm struct {
	ReusableFormID string         `json:"reusable_form_id"`
	Title          string         `json:"title"`
	Message        string         `json:"message,omitempty"`
	SignerRoles    []FormRole     `json:"signer_roles"`
	CCRoles        []FormRole     `json:"cc_roles"`
	Documents      []FormDocument `json:"documents,omitempty"`
	CustomFields   []FormField    `json:"custom_fields,omitempty"`
	Accounts       []AccountRef   `json:"accounts,omitempty"`
	IsCreator      bool           `json:"is_creator"`
	CanEdit        bool           `json:"can_edit"`
}

type ReusableFormList struct {
	ListInfo      ListInfo       `json:"list_info"`
	ReusableForms []ReusableForm `json:"reusable_forms"`
}

type Quotas struct {
	APISignatureRequestsLeft *int `json:"api_signature_requests_left,omitempty"`
	DocumentsLeft            *int `json:"documents_left,omitempty"`
	TemplatesLeft            *int `json:"templates_left,omitempty"`
}

type Account struct {
	AccountID    string  `json:"account_id"`
	EmailAddress string  `json:"email_address"`
	CallbackURL  string  `json:"callback_url,omitempty"`
	RoleCode     string  `json:"role_code,omitempty"`
	IsPaidHS     bool    `json:"is_paid_hs"`
	Quotas       *Quotas `json:"quotas,omitempty"`
}

type Team struct {
	Name            string       `json:"name"`
	Accounts        []AccountRef `json:"accounts"`
	InvitedAccounts []AccountRef `json:"invited_accounts,omitempty"`
}

type UnclaimedDraftInfo struct {
	ClaimURL           string  `json:"claim_url"`
	SigningRedirectURL string  `json:"signing_redirect_url,omitempty"`
	TestMode           bool    `json:"test_mode"`
	ExpiresAt          FlexInt `json:"expires_at,omitempty"`
}

type EmbeddedSignURL struct {
	SignURL   string  `json:"sign_url"`
	ExpiresAt FlexInt `json:"expires_at"`
}

// decodeInto decodes the object under key into v.
func decodeInto(resp *Response, key string, v any) error {
	obj := resp.Object()
	if obj == nil {
		return fmt.Errorf("unexpected API response format: expected a JSON object")
	}
	inner, ok := obj[CanonicalKey(key)]
	if !ok {
		return fmt.Errorf("unexpected API response format: missing %q", key)
	}
	return (&Response{Body: inner}).Decode(v)
}
