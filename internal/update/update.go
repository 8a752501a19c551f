// Package update checks GitHub for a newer CLI release.
package update

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the GitHub API endpoint of the latest release.
	DefaultReleasesURL = "https://api.github.com/repos/hellosign/hellosign-cli/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the URL to check for releases. Can be overridden in tests.
var ReleasesURL = DefaultReleasesURL

type Release struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// CheckForUpdate checks if a newer version is available.
// Returns nil if the check fails or the build is unversioned; it never
// blocks the CLI for longer than CheckTimeout.
func CheckForUpdate(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	var release Release
	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetResult(&release).
		Get(ReleasesURL)
	if err != nil || resp.StatusCode() != 200 || release.TagName == "" || release.Prerelease {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(release.TagName)

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}

	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}

	return result
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
