package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var cfgErr *api.ConfigurationError
	var transportErr *api.TransportError

	switch {
	case errors.Is(err, config.ErrNotConfigured), errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: hs auth login\n")
		fmt.Fprintf(&msg, "  - Or set %s and %s\n", config.EnvEmailAddress, config.EnvPassword)

	case errors.As(err, &apiErr):
		detail := apiErr.Message
		if detail == "" {
			detail = strings.TrimSpace(string(apiErr.Raw))
		}
		if detail == "" {
			detail = "(empty error body)"
		}
		if apiErr.Name != "" {
			fmt.Fprintf(&msg, "API error (HTTP %d, %s): %s\n\n", apiErr.StatusCode, apiErr.Name, detail)
		} else {
			fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, detail)
		}
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode, detail))
		if apiErr.RetryAfter > 0 {
			fmt.Fprintf(&msg, "\nRetry after: %s\n", apiErr.RetryAfter)
		}
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the API host: hs auth status\n")
		msg.WriteString("  - Check your network connection\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check --base-url or HELLOSIGN_BASE_URL for typos\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's SSL certificate\n")
		msg.WriteString("  - Ensure the base URL uses https:// correctly\n")

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Increase --timeout or retry with --retries\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int, detail string) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --dry-run to see the request body\n")
		if strings.Contains(strings.ToLower(detail), "required") {
			suggestions.WriteString("  - A required field may be missing\n")
		}

	case 401:
		suggestions.WriteString("  - Your email address or password may be wrong\n")
		suggestions.WriteString("  - Run: hs auth login\n")

	case 402:
		suggestions.WriteString("  - Your plan does not include this feature\n")
		suggestions.WriteString("  - Use --test-mode for non-binding requests\n")

	case 403:
		suggestions.WriteString("  - You don't have permission for this action\n")
		suggestions.WriteString("  - Check your team role\n")

	case 404:
		suggestions.WriteString("  - The resource doesn't exist\n")
		suggestions.WriteString("  - Check the ID is correct\n")

	case 409:
		suggestions.WriteString("  - The resource changed state (e.g. already signed or canceled)\n")

	case 410:
		suggestions.WriteString("  - The resource was deleted\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry, or pass --retries\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}

// ExitWithError prints error with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errAlreadyHandled) {
		_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	}
	os.Exit(ExitCode(err))
}
