// Package dryrun previews API calls without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/hellosign/hellosign-cli/internal/api"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview is a request as it would be sent.
type Preview struct {
	Method string
	// Path is version-relative, e.g. /signature_request/send.
	Path   string
	Auth   bool
	Params map[string]string
	// Form is the flattened wire body. Attachments appear as "@filename".
	Form     url.Values
	Warnings []string
}

// NewPreview flattens body the way the client would encode it.
func NewPreview(method, path string, opts api.RequestOptions) (*Preview, error) {
	p := &Preview{
		Method: method,
		Path:   path,
		Auth:   !opts.AuthNotRequired,
		Params: opts.Params,
	}
	if opts.Body != nil {
		form, err := api.FormValues(opts.Body)
		if err != nil {
			return nil, err
		}
		p.Form = form
	}
	return p, nil
}

// JSON returns the preview as a JSON-ready value with the body rebuilt into
// its nested form.
func (p *Preview) JSON() map[string]any {
	out := map[string]any{
		"dry_run": true,
		"method":  p.Method,
		"path":    api.APIVersion + p.Path,
		"auth":    p.Auth,
	}
	if len(p.Params) > 0 {
		out["params"] = p.Params
	}
	if len(p.Form) > 0 {
		out["body"] = api.DecodeForm(p.Form)
	}
	if len(p.Warnings) > 0 {
		out["warnings"] = p.Warnings
	}
	return out
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s %s%s\n", p.Method, api.APIVersion, p.Path)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if !p.Auth {
		_, _ = fmt.Fprintln(w, "  (no authentication)")
	}
	for _, k := range sortedKeys(p.Params) {
		_, _ = fmt.Fprintf(w, "  ?%s=%s\n", k, p.Params[k])
	}
	if len(p.Form) > 0 {
		keys := make([]string, 0, len(p.Form))
		for k := range p.Form {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range p.Form[k] {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", k, v)
			}
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "Nothing sent (dry-run mode)")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
