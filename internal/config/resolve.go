package config

import (
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL      string
	EmailAddress string
	Password     string
}

// ResolveClientConfig resolves the account of profile, or the active account
// when profile is empty, with an optional base URL override. An empty BaseURL
// means the client default.
func ResolveClientConfig(profile, baseURLOverride string) (ClientConfig, error) {
	var (
		account Account
		err     error
	)
	if profile = strings.TrimSpace(profile); profile != "" {
		account, err = LoadProfile(profile)
		if err == nil {
			account = applyBaseURLEnv(account)
		}
	} else {
		account, err = LoadAccount()
	}
	if err != nil {
		return ClientConfig{}, err
	}
	cfg := ClientConfig{
		BaseURL:      account.BaseURL,
		EmailAddress: account.EmailAddress,
		Password:     account.Password,
	}
	if baseURLOverride = strings.TrimSpace(baseURLOverride); baseURLOverride != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURLOverride, "/")
	}
	return cfg, nil
}
