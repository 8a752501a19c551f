// Package validation checks user input before it is sent to the API.
//
// URLs handed to the API (callback URLs, remote documents) are fetched by
// HelloSign's servers, so they must be publicly reachable: private ranges,
// loopback and cloud metadata endpoints are rejected. Private ranges can be
// allowed with HELLOSIGN_ALLOW_PRIVATE (any strconv.ParseBool value) or
// SetAllowPrivate(true); metadata endpoints stay blocked regardless.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// EnvAllowPrivate toggles acceptance of private and loopback hosts.
const EnvAllowPrivate = "HELLOSIGN_ALLOW_PRIVATE"

var allowPrivate atomic.Bool

// lookupIP is replaced in tests.
var lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
	return (&net.Resolver{}).LookupIP(ctx, "ip", host)
}

var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvAllowPrivate)))
	allowPrivate.Store(v)

	for _, cidr := range []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737
		"198.18.0.0/15",   // RFC2544
		"198.51.100.0/24", // RFC5737
		"203.0.113.0/24",  // RFC5737
		"240.0.0.0/4",     // RFC1112
		"fc00::/7",        // RFC4193
		"100::/64",        // RFC6666
		"2001:db8::/32",   // RFC3849
	} {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

// SetAllowPrivate enables or disables private and loopback hosts.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and loopback hosts are accepted.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateCallbackURL validates the URL that receives account events.
// An empty value is allowed and clears the callback.
func ValidateCallbackURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	return validateRemoteURL("callback URL", rawURL)
}

// ValidateFileURL validates a document URL for HelloSign to download.
func ValidateFileURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("file URL cannot be empty")
	}
	return validateRemoteURL("file URL", rawURL)
}

func validateRemoteURL(kind, rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", kind, MaxURLLength)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", kind, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: only http and https are allowed, got %q", kind, parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("%s must contain a hostname", kind)
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if isLocalhost(hostname) {
		if allowPrivate.Load() {
			return nil
		}
		return fmt.Errorf("localhost URLs are not allowed: HelloSign cannot reach them")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return validateIPAddress(ip)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ips, err := lookupIP(ctx, hostname)
	if err != nil {
		// Unresolvable names are left to the API to reject.
		return nil
	}
	for _, ip := range ips {
		if err := validateIPAddress(ip); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", hostname, ip.String(), err)
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	h := strings.ToLower(hostname)
	switch h {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "::":
		return true
	}
	return strings.HasSuffix(h, ".localhost")
}

func isCloudMetadata(hostname string) bool {
	h := strings.ToLower(hostname)
	switch h {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(h, ".metadata.google.internal")
}

func validateIPAddress(ip net.IP) error {
	if ip.String() == "169.254.169.254" {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("link-local and multicast IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	if ip.IsPrivate() || isPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
