package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/debug"
	"github.com/hellosign/hellosign-cli/internal/dryrun"
	"github.com/hellosign/hellosign-cli/internal/iocontext"
	"github.com/hellosign/hellosign-cli/internal/outfmt"
)

const envOutput = "HELLOSIGN_OUTPUT"

// rootFlags holds global CLI flags
type rootFlags struct {
	Output      string
	JSON        bool
	Query       string
	JQ          string
	Compact     bool
	Debug       bool
	DryRun      bool
	Quiet       bool
	Yes         bool
	Timeout     time.Duration
	Retries     int
	Profile     string
	BaseURL     string
	Concurrency int
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:      defaultOutput(),
		Timeout:     api.DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv(envOutput)); value != "" {
		return value
	}
	return "text"
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = defaultFlags()

	root := &cobra.Command{
		Use:                "hs",
		Short:              "CLI for the HelloSign e-signature API",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // did-you-mean comes from enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if getJQQuery() != "" && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--query/--jq require --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if query := getJQQuery(); query != "" {
				ctx = outfmt.WithQuery(ctx, query)
			}

			ioStreams := iocontext.DefaultIO()
			if flags.Quiet {
				ioStreams.ErrOut = io.Discard
				if mode == outfmt.Text {
					ioStreams.Out = io.Discard
				}
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if flags.Retries < 0 {
				return fmt.Errorf("--retries must be >= 0")
			}
			if flags.Concurrency < 1 {
				return fmt.Errorf("--concurrency must be >= 1")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env HELLOSIGN_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the request that would be sent without sending it")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.IntVar(&flags.Retries, "retries", 0, "Retry 429 and 5xx responses this many times")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env HELLOSIGN_PROFILE)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "Override the API host (env HELLOSIGN_BASE_URL)")
	pf.IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Parallel requests for bulk operations")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "timeout", "to")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newSignatureRequestsCmd())
	root.AddCommand(newReusableFormsCmd())
	root.AddCommand(newAccountCmd())
	root.AddCommand(newTeamCmd())
	root.AddCommand(newDraftsCmd())
	root.AddCommand(newEmbeddedCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			cmd := targetCmd
			if cmd == nil {
				cmd = root
			}
			var flagNames []string
			seen := map[string]bool{}
			add := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden || seen[f.Name] {
						return
					}
					seen[f.Name] = true
					flagNames = append(flagNames, "--"+f.Name)
				})
			}
			add(cmd.Flags())
			add(cmd.InheritedFlags())
			helpCmd := strings.TrimSpace(cmd.CommandPath()) + " --help"
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
