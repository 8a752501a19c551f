package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRetryPolicy is the retry condition installed on the network adapter.
// It only takes effect when retries are enabled with WithRetryCount. It retries
// 429 and 5xx responses and transient connection errors, but never context
// cancellation or DNS failures.
func DefaultRetryPolicy(r *resty.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}

		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return false
		}

		return true
	}
	if r == nil {
		return false
	}

	return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
}

// NoRetryPolicy never retries.
func NoRetryPolicy(_ *resty.Response, _ error) bool {
	return false
}

// retryAfterDuration parses Retry-After header values (seconds or HTTP date).
func retryAfterDuration(h http.Header) (time.Duration, bool) {
	value := strings.TrimSpace(h.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
