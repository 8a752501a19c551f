package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/dryrun"
	"github.com/hellosign/hellosign-cli/internal/iocontext"
	"github.com/hellosign/hellosign-cli/internal/outfmt"
	"github.com/hellosign/hellosign-cli/internal/urlparse"
)

const envCacheDir = "HELLOSIGN_CACHE_DIR"

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query for consistency with gh CLI.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// getClient creates an API client from stored credentials
func getClient() (*api.Client, error) {
	return newClientFactory().account()
}

// printJSON outputs data as JSON with optional query filtering
func printJSON(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut).Output(v)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

func printAction(cmd *cobra.Command, action, resource, id string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	message := fmt.Sprintf("%s %s", action, resource)
	if id != "" {
		message += " " + id
	}
	_, _ = fmt.Fprintln(ioStreams.Out, message)
}

// cmdContext returns the command context
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// maybeDryRun prints the request instead of sending it when --dry-run is set.
func maybeDryRun(cmd *cobra.Command, method, path string, opts api.RequestOptions, warnings ...string) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	preview, err := dryrun.NewPreview(method, path, opts)
	if err != nil {
		return true, err
	}
	preview.Warnings = warnings
	if isJSON(cmd) {
		return true, printJSON(cmd, preview.JSON())
	}
	preview.Write(iocontext.GetIO(cmd.Context()).Out)
	return true, nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// flagAlias registers a hidden alias for an existing flag. Both flags share
// the same underlying Value.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Value = &aliasBridgeValue{Value: f.Value, canonical: f}
	a.Annotations = map[string][]string{"alias-of": {name}}
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && fs.Changed(f.Name) {
				found = true
			}
		})
		return found
	}
	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

type confirmOptions struct {
	Prompt        string
	CancelMessage string
	Force         bool
}

// confirmAction asks for a y/N answer on stdin. --yes and --force skip the
// prompt; JSON output requires one of them.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes || opts.Force {
		return true, nil
	}
	if isJSON(cmd) {
		return false, fmt.Errorf("--force flag is required when using --output json")
	}

	out := cmd.OutOrStdout()
	if opts.Prompt != "" {
		_, _ = fmt.Fprint(out, opts.Prompt)
	}
	reader := bufio.NewReader(iocontext.GetIO(cmd.Context()).In)
	response, err := reader.ReadString('\n')
	if (err != nil && response == "") || strings.TrimSpace(strings.ToLower(response)) != "y" {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}
	return true, nil
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if isJSON(cmd) {
			if structured := api.StructuredErrorFromError(err); structured != nil {
				_ = printJSONErr(cmd, structured)
			}
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

func resolveCacheDir() string {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir
	}
	return defaultCacheDir()
}

// parseSigner parses "Name <email>" or "email", optionally followed by
// ":role" (reusable forms) and "#pin".
func parseSigner(value string) (api.Signer, error) {
	raw := strings.TrimSpace(value)
	var signer api.Signer
	if i := strings.LastIndex(raw, "#"); i > strings.LastIndex(raw, ">") {
		signer.PIN = strings.TrimSpace(raw[i+1:])
		raw = strings.TrimSpace(raw[:i])
	}
	if i := strings.LastIndex(raw, ":"); i > strings.LastIndex(raw, ">") && i > strings.LastIndex(raw, "@") {
		signer.Role = strings.TrimSpace(raw[i+1:])
		raw = strings.TrimSpace(raw[:i])
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return api.Signer{}, fmt.Errorf("invalid --signer %q: want \"Name <email>[:role]\"", value)
	}
	signer.Name = addr.Name
	signer.EmailAddress = addr.Address
	if signer.Name == "" {
		signer.Name = addr.Address
	}
	return signer, nil
}

// parseCC parses "email[:role]".
func parseCC(value string) (api.CC, error) {
	raw := strings.TrimSpace(value)
	var cc api.CC
	if i := strings.LastIndex(raw, ":"); i > strings.LastIndex(raw, "@") {
		cc.Role = strings.TrimSpace(raw[i+1:])
		raw = strings.TrimSpace(raw[:i])
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return api.CC{}, fmt.Errorf("invalid --cc %q: want \"email[:role]\"", value)
	}
	cc.EmailAddress = addr.Address
	return cc, nil
}

// parseKeyValue splits "key=value". The key must not be empty.
func parseKeyValue(flag, value string) (string, string, error) {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid %s %q: want key=value", flag, value)
	}
	return key, val, nil
}

// openAttachments opens every path for upload. The returned close function
// releases all of them.
func openAttachments(paths []string) ([]api.Attachment, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	attachments := make([]api.Attachment, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open --file %q: %w", path, err)
		}
		files = append(files, f)
		attachments = append(attachments, api.Attachment{
			Name:     filepath.Base(path),
			Content:  f,
			MimeType: mime.TypeByExtension(filepath.Ext(path)),
		})
	}
	return attachments, closeAll, nil
}

// formatUnix renders a HelloSign timestamp, or "-" when unset.
func formatUnix(ts api.FlexInt) string {
	t := ts.Time()
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

// addRateLimitMeta adds the quota of the client's last response to a JSON
// list payload.
func addRateLimitMeta(payload map[string]any, client *api.Client) {
	if rl, ok := client.LastRateLimit(); ok {
		payload["rate_limit"] = rl.Meta()
	}
}

// warnLowRateLimit tells the user on stderr when the hourly API quota is
// nearly used up.
func warnLowRateLimit(cmd *cobra.Command, client *api.Client) {
	rl, ok := client.LastRateLimit()
	if !ok || !rl.Low() {
		return
	}
	msg := fmt.Sprintf("Warning: only %d of %d API requests left this hour", rl.Remaining, rl.Limit)
	if !rl.ResetAt.IsZero() {
		msg += fmt.Sprintf(" (resets at %s)", rl.ResetAt.Local().Format(time.Kitchen))
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), msg)
}

// signatureRequestID accepts a signature request ID or a HelloSign URL that
// points at one (manage page, signing link or API URL).
func signatureRequestID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if urlparse.IsURL(arg) {
		return urlparse.ResourceID(arg, urlparse.SignatureRequest)
	}
	if arg == "" {
		return "", fmt.Errorf("signature request ID is required")
	}
	return arg, nil
}

func signatureRequestArgs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := signatureRequestID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
