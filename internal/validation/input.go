package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Input limits enforced by the API
const (
	MaxEmailLength   = 320 // RFC 5321: 64 (local) + 1 (@) + 255 (domain)
	MaxTitleLength   = 255
	MaxSubjectLength = 200
	MaxMessageLength = 5000
	MaxURLLength     = 2048
)

// ValidateEmail checks that email is a bare address within the length limit.
// Display names ("Jack <jack@example.com>") are rejected; callers split them
// off first.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address cannot be empty")
	}
	if n := utf8.RuneCountInString(email); n > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, n)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format %q: %w", email, err)
	}
	if addr.Name != "" || !strings.EqualFold(addr.Address, email) {
		return fmt.Errorf("invalid email format %q: expected a bare address", email)
	}
	return nil
}

// ValidateText enforces a maximum rune count on an optional text field.
func ValidateText(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", field, limit, n)
	}
	return nil
}

// ValidateRequestText checks the free-text fields of a signature request.
func ValidateRequestText(title, subject, message string) error {
	if err := ValidateText("title", title, MaxTitleLength); err != nil {
		return err
	}
	if err := ValidateText("subject", subject, MaxSubjectLength); err != nil {
		return err
	}
	return ValidateText("message", message, MaxMessageLength)
}
