package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantContains []string
	}{
		{
			name:         "not configured",
			err:          fmt.Errorf("resolve: %w", config.ErrNotConfigured),
			wantContains: []string{"hs auth login", config.EnvEmailAddress},
		},
		{
			name: "API error with name",
			err: &api.APIError{
				StatusCode: 404,
				Name:       "not_found",
				Message:    "Not found",
				RequestID:  "req-1",
			},
			wantContains: []string{"API error (HTTP 404, not_found): Not found", "doesn't exist", "Request ID: req-1"},
		},
		{
			name:         "API error with empty body",
			err:          &api.APIError{StatusCode: 500},
			wantContains: []string{"(empty error body)", "not your fault"},
		},
		{
			name:         "rate limited",
			err:          &api.APIError{StatusCode: 429, RetryAfter: 3 * time.Second},
			wantContains: []string{"Too many requests", "Retry after: 3s"},
		},
		{
			name:         "bad request mentions required",
			err:          &api.APIError{StatusCode: 400, Message: "Signer email is required"},
			wantContains: []string{"--dry-run", "required field"},
		},
		{
			name:         "connection refused",
			err:          &api.TransportError{Method: "GET", URL: "http://x", Err: errors.New("dial tcp: connection refused")},
			wantContains: []string{"Connection refused", "hs auth status"},
		},
		{
			name:         "other transport failure",
			err:          &api.TransportError{Method: "GET", URL: "http://x", Err: errors.New("EOF")},
			wantContains: []string{"Request failed", "--retries"},
		},
		{
			name:         "generic",
			err:          errors.New("boom"),
			wantContains: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}

	assert.Empty(t, HandleError(nil))
}
