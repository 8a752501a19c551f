package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Option func(*Options)

// Options hold the optional client settings. Use the With* functions to set them.
type Options struct {
	baseURL          string
	httpClient       *http.Client
	timeout          time.Duration
	userAgent        string
	requestLogger    RequestLogger
	retryCount       int
	retryWaitTime    time.Duration
	retryMaxWaitTime time.Duration
	retryPolicy      func(*resty.Response, error) bool
}

func newClientOptions() *Options {
	return &Options{
		baseURL:          DefaultBaseURL,
		timeout:          DefaultTimeout,
		requestLogger:    &NoopLogger{},
		retryCount:       0,
		retryWaitTime:    500 * time.Millisecond,
		retryMaxWaitTime: 3 * time.Second,
		retryPolicy:      DefaultRetryPolicy,
	}
}

// WithBaseURL points the client at another API host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= 0 {
			o.timeout = timeout
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		o.userAgent = strings.TrimSpace(userAgent)
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

// WithRetryCount enables resty's retry for up to count extra attempts.
// The default is 0: every call is exactly one round trip.
func WithRetryCount(count int) Option {
	return func(o *Options) {
		if count >= 0 {
			o.retryCount = count
		}
	}
}

func WithRetryWaitTime(waitTime time.Duration) Option {
	return func(o *Options) {
		if waitTime >= 100*time.Millisecond {
			o.retryWaitTime = waitTime
		}
	}
}

func WithRetryMaxWaitTime(maxWaitTime time.Duration) Option {
	return func(o *Options) {
		if maxWaitTime >= 100*time.Millisecond {
			o.retryMaxWaitTime = maxWaitTime
		}
	}
}

func WithRetryPolicy(policy func(*resty.Response, error) bool) Option {
	return func(o *Options) {
		if policy != nil {
			o.retryPolicy = policy
		}
	}
}
