// Package urlparse extracts object IDs from HelloSign web and API URLs.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Resource types.
const (
	SignatureRequest = "signature_request"
	ReusableForm     = "reusable_form"
)

// ParsedURL is a HelloSign URL reduced to the object it points at.
type ParsedURL struct {
	BaseURL      string
	ResourceType string
	ResourceID   string
}

const idPattern = `([0-9a-fA-F]{40})`

var pathPatterns = []struct {
	re           *regexp.Regexp
	resourceType string
}{
	// https://app.hellosign.com/sign/{id}
	{regexp.MustCompile(`^/sign/` + idPattern + `/?$`), SignatureRequest},
	// https://api.hellosign.com/v3/signature_request/{id}, .../files/{id}
	{regexp.MustCompile(`^/v3/signature_request/(?:[a-z_]+/)?` + idPattern + `/?$`), SignatureRequest},
	// https://api.hellosign.com/v3/reusable_form/{id}
	{regexp.MustCompile(`^/v3/reusable_form/(?:[a-z_]+/)?` + idPattern + `/?$`), ReusableForm},
}

// guidPaths carry the ID in the guid query parameter.
var guidPaths = map[string]string{
	"/home/manage":             SignatureRequest,
	"/home/createReusableDocs": ReusableForm,
}

var guidRegex = regexp.MustCompile(`^` + idPattern + `$`)

// IsURL reports whether s looks like an http(s) URL rather than a bare ID.
func IsURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// Parse extracts the resource from a URL such as
// https://app.hellosign.com/home/manage?guid={id}.
func Parse(rawURL string) (*ParsedURL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid URL: missing scheme (expected https://...)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}

	out := &ParsedURL{BaseURL: fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)}

	if resourceType, ok := guidPaths[strings.TrimSuffix(parsed.Path, "/")]; ok {
		guid := parsed.Query().Get("guid")
		if !guidRegex.MatchString(guid) {
			return nil, fmt.Errorf("URL has no valid guid parameter")
		}
		out.ResourceType = resourceType
		out.ResourceID = strings.ToLower(guid)
		return out, nil
	}

	for _, p := range pathPatterns {
		if m := p.re.FindStringSubmatch(parsed.Path); m != nil {
			out.ResourceType = p.resourceType
			out.ResourceID = strings.ToLower(m[1])
			return out, nil
		}
	}

	return nil, fmt.Errorf("unrecognized HelloSign URL %q: expected a signing, manage or API URL", rawURL)
}

// ResourceID returns the ID of a resourceType object from rawURL.
func ResourceID(rawURL, resourceType string) (string, error) {
	p, err := Parse(rawURL)
	if err != nil {
		return "", err
	}
	if p.ResourceType != resourceType {
		return "", fmt.Errorf("URL points at a %s, not a %s", strings.ReplaceAll(p.ResourceType, "_", " "), strings.ReplaceAll(resourceType, "_", " "))
	}
	return p.ResourceID, nil
}
