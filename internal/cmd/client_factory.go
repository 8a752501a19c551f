package cmd

import (
	"fmt"
	"time"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	retries   int
	profile   string
	baseURL   string
	debug     bool
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("hellosign-cli/%s", version),
		retries:   flags.Retries,
		profile:   flags.Profile,
		baseURL:   flags.BaseURL,
		debug:     flags.Debug,
	}
}

// account builds a client for the active profile.
func (f *clientFactory) account() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(f.profile, f.baseURL)
	if err != nil {
		return nil, err
	}
	return api.NewFromConfig(api.Config{
		EmailAddress: cfg.EmailAddress,
		Password:     cfg.Password,
	}, f.options(cfg.BaseURL)...)
}

// anonymous builds a client for calls that need no credentials, such as
// account creation.
func (f *clientFactory) anonymous() *api.Client {
	baseURL := f.baseURL
	if baseURL == "" {
		if cfg, err := config.ResolveClientConfig(f.profile, ""); err == nil {
			baseURL = cfg.BaseURL
		}
	}
	return api.New("", "", f.options(baseURL)...)
}

func (f *clientFactory) options(baseURL string) []api.Option {
	opts := []api.Option{
		api.WithTimeout(f.timeout),
		api.WithUserAgent(f.userAgent),
		api.WithRetryCount(f.retries),
	}
	if baseURL != "" {
		opts = append(opts, api.WithBaseURL(baseURL))
	}
	if f.debug {
		opts = append(opts, api.WithRequestLogger(&api.SlogLogger{}))
	}
	return opts
}
