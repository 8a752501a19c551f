package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// lowQuotaPercent is the share of the hourly quota below which RateLimit.Low
// reports true.
const lowQuotaPercent = 10

// RateLimit is the hourly request quota HelloSign reports on each response.
type RateLimit struct {
	Limit     int
	Remaining int
	// ResetAt is zero when the reset header is missing or not a Unix time.
	ResetAt time.Time
}

// Low reports whether fewer than lowQuotaPercent of the requests are left.
func (r RateLimit) Low() bool {
	return r.Limit > 0 && r.Remaining*100 < r.Limit*lowQuotaPercent
}

// Meta renders the quota for JSON output.
func (r RateLimit) Meta() map[string]any {
	meta := map[string]any{
		"limit":     r.Limit,
		"remaining": r.Remaining,
	}
	if !r.ResetAt.IsZero() {
		meta["reset_at"] = r.ResetAt.UTC().Format(time.RFC3339)
	}
	return meta
}

// LastRateLimit returns the quota from the most recent response that carried
// one.
func (c *Client) LastRateLimit() (RateLimit, bool) {
	rl := c.rateLimit.Load()
	if rl == nil {
		return RateLimit{}, false
	}
	return *rl, true
}

// recordRateLimit is a response stage. Responses without quota headers keep
// the previous value.
func (c *Client) recordRateLimit(resp *Response) error {
	if rl, ok := parseRateLimit(resp.Header); ok {
		c.rateLimit.Store(&rl)
	}
	return nil
}

// parseRateLimit reads X-Ratelimit-Limit, X-Ratelimit-Limit-Remaining and
// X-Ratelimit-Reset. Limit and remaining must both be present.
func parseRateLimit(h http.Header) (RateLimit, bool) {
	limit, ok := headerInt(h, "X-Ratelimit-Limit")
	if !ok {
		return RateLimit{}, false
	}
	remaining, ok := headerInt(h, "X-Ratelimit-Limit-Remaining", "X-Ratelimit-Remaining")
	if !ok {
		return RateLimit{}, false
	}
	rl := RateLimit{Limit: limit, Remaining: remaining}
	if reset, ok := headerInt(h, "X-Ratelimit-Reset"); ok && reset > 0 {
		rl.ResetAt = time.Unix(int64(reset), 0)
	}
	return rl, true
}

func headerInt(h http.Header, keys ...string) (int, bool) {
	for _, key := range keys {
		raw := strings.TrimSpace(h.Get(key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
