package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hellosign/hellosign-cli/internal/debug"
)

const (
	// DefaultBaseURL is the HelloSign API host.
	DefaultBaseURL = "https://api.hellosign.com"
	// APIVersion is prepended to every request path.
	APIVersion     = "/v3"
	DefaultTimeout = 30 * time.Second
)

// Credentials identify the account every authenticated request is made as.
type Credentials struct {
	EmailAddress string
	Password     string
}

// Config is the named-field form of client construction. Both fields are required.
type Config struct {
	EmailAddress string
	Password     string
}

// Client is the HelloSign API client.
//
// Credentials and endpoint are fixed at construction. Every call derives its own
// ordered stage list (auth, encoding, decoding), so the client carries no
// per-request state and may be shared across goroutines.
type Client struct {
	credentials Credentials
	baseURL     string
	options     *Options
	http        *resty.Client

	rateLimit atomic.Pointer[RateLimit]
}

// Compile-time interface implementation check
var _ Requester = (*Client)(nil)

// New creates a client from an email address and password.
func New(emailAddress, password string, opts ...Option) *Client {
	return newClient(Credentials{EmailAddress: emailAddress, Password: password}, opts...)
}

// NewFromConfig creates a client from a Config. It fails with a
// *ConfigurationError when a required field is blank.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.EmailAddress) == "" {
		return nil, &ConfigurationError{Field: "email_address"}
	}
	if cfg.Password == "" {
		return nil, &ConfigurationError{Field: "password"}
	}
	return newClient(Credentials{EmailAddress: cfg.EmailAddress, Password: cfg.Password}, opts...), nil
}

func newClient(creds Credentials, opts ...Option) *Client {
	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	var httpClient *resty.Client
	if options.httpClient != nil {
		httpClient = resty.NewWithClient(options.httpClient)
	} else {
		httpClient = resty.New()
	}
	if options.timeout > 0 {
		httpClient.SetTimeout(options.timeout)
	}
	httpClient.
		SetLogger(options.requestLogger).
		SetRetryCount(options.retryCount).
		SetRetryWaitTime(options.retryWaitTime).
		SetRetryMaxWaitTime(options.retryMaxWaitTime).
		AddRetryCondition(options.retryPolicy).
		SetHeader("Accept", "application/json")
	if options.userAgent != "" {
		httpClient.SetHeader("User-Agent", options.userAgent)
	}

	return &Client{
		credentials: creds,
		baseURL:     strings.TrimSuffix(options.baseURL, "/"),
		options:     options,
		http:        httpClient,
	}
}

// Credentials returns the credentials the client authenticates with.
func (c *Client) Credentials() Credentials {
	return c.credentials
}

// BaseURL returns the API host requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint returns the absolute URL for a version-relative path.
func (c *Client) endpoint(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.baseURL + APIVersion + path
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts)
}

// Request executes exactly one API call and returns its decoded response.
//
// Params are appended as the query string and Body is handed to the encoding
// stages as given. A transport failure is returned as *TransportError and any
// status >= 400 as *APIError carrying the decoded body.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	url := c.endpoint(path)

	call := &call{
		opts: opts,
		req:  c.http.R().SetContext(ctx),
	}
	if len(opts.Params) > 0 {
		call.req.SetQueryParams(opts.Params)
	}
	for _, stage := range c.requestStages(opts) {
		if err := stage(call); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := call.req.Execute(method, url)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", url, "error", err)
		}
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode(), "duration", time.Since(start))
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Raw:        resp.Body(),
	}
	for _, stage := range c.responseStages() {
		if err := stage(out); err != nil && out.StatusCode < 400 {
			return nil, err
		}
	}

	if out.StatusCode >= 400 {
		return out, newAPIError(out)
	}
	return out, nil
}
