package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ConfigurationError reports a missing construction field. It is raised
// before any network activity.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}

// TransportError wraps a failure below HTTP (connect, TLS, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents a response with status >= 400.
type APIError struct {
	StatusCode int
	// Name and Message come from HelloSign's {"error": {"error_name", "error_msg"}}.
	Name    string
	Message string
	// Body is the decoded body, when it was JSON.
	Body      any
	Raw       []byte
	RequestID string
	// RetryAfter is set from the Retry-After header, if present.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(e.Raw))
	}
	if msg == "" {
		msg = "(empty error body)"
	}
	if e.Name != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Name, msg)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}

func newAPIError(resp *Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Raw:        resp.Raw,
		RequestID:  firstHeader(resp.Header, "X-Request-Id", "X-Request-ID"),
	}
	if errObj := resp.Object().Object("error"); errObj != nil {
		apiErr.Name = errObj.String("error_name")
		apiErr.Message = errObj.String("error_msg")
	} else if msg := resp.Object().String("error"); msg != "" {
		apiErr.Message = msg
	}
	if d, ok := retryAfterDuration(resp.Header); ok {
		apiErr.RetryAfter = d
	}
	return apiErr
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsAPIError checks if the error is an API error response.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsAuthError checks if the API rejected the credentials.
func IsAuthError(err error) bool {
	var e *APIError
	if !errors.As(err, &e) {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimitError checks if the API refused the call for exceeding the rate limit.
func IsRateLimitError(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusTooManyRequests
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound ||
			strings.EqualFold(apiErr.Name, "not_found")
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
