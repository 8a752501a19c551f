package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestDefaultRetryPolicy_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection refused", errors.New("connection refused"), true},
		{"canceled", fmt.Errorf("get: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryPolicy(nil, tt.err); got != tt.want {
				t.Errorf("DefaultRetryPolicy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultRetryPolicy_NilResponse(t *testing.T) {
	if DefaultRetryPolicy(nil, nil) {
		t.Error("expected no retry without response or error")
	}
	if NoRetryPolicy(nil, errors.New("x")) {
		t.Error("NoRetryPolicy must never retry")
	}
}
