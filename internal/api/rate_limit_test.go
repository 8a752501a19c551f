package api

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRateLimit(t *testing.T) {
	h := http.Header{}
	if _, ok := parseRateLimit(h); ok {
		t.Error("expected no rate limit without headers")
	}

	h.Set("X-Ratelimit-Limit", "100")
	h.Set("X-Ratelimit-Limit-Remaining", "7")
	h.Set("X-Ratelimit-Reset", "1704067260")
	rl, ok := parseRateLimit(h)
	if !ok || rl.Limit != 100 || rl.Remaining != 7 {
		t.Fatalf("unexpected rate limit %+v", rl)
	}
	if !rl.Low() {
		t.Error("7 of 100 should be low")
	}

	meta := rl.Meta()
	if meta["limit"] != 100 || meta["remaining"] != 7 || meta["reset_at"] != "2024-01-01T00:01:00Z" {
		t.Errorf("unexpected meta %v", meta)
	}
}

func TestParseRateLimit_PartialHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		ok      bool
		reset   bool
	}{
		{"limit only", map[string]string{"X-Ratelimit-Limit": "100"}, false, false},
		{"unparseable limit", map[string]string{"X-Ratelimit-Limit": "many", "X-Ratelimit-Remaining": "5"}, false, false},
		{"legacy remaining header", map[string]string{"X-Ratelimit-Limit": "100", "X-Ratelimit-Remaining": "50"}, true, false},
		{"unparseable reset", map[string]string{"X-Ratelimit-Limit": "100", "X-Ratelimit-Limit-Remaining": "50", "X-Ratelimit-Reset": "soon"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			rl, ok := parseRateLimit(h)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && rl.ResetAt.IsZero() == tt.reset {
				t.Errorf("ResetAt = %v", rl.ResetAt)
			}
			if _, has := rl.Meta()["reset_at"]; ok && has != tt.reset {
				t.Errorf("meta = %v", rl.Meta())
			}
		})
	}
}

func TestRateLimitLow(t *testing.T) {
	if (RateLimit{Limit: 100, Remaining: 10}).Low() {
		t.Error("10 of 100 is not below 10%")
	}
	if !(RateLimit{Limit: 100, Remaining: 9}).Low() {
		t.Error("9 of 100 is below 10%")
	}
	if (RateLimit{}).Low() {
		t.Error("unknown limit is never low")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	h := http.Header{}
	if _, ok := retryAfterDuration(h); ok {
		t.Error("expected no value")
	}
	h.Set("Retry-After", "3")
	if d, ok := retryAfterDuration(h); !ok || d != 3*time.Second {
		t.Errorf("got %v, %v", d, ok)
	}
}
