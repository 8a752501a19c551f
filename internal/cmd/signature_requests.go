package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/cli"
	"github.com/hellosign/hellosign-cli/internal/iocontext"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

func newSignatureRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "signature-requests",
		Aliases: []string{"sr", "requests"},
		Short:   "Send and track signature requests",
	}

	cmd.AddCommand(newSignatureRequestsSendCmd())
	cmd.AddCommand(newSignatureRequestsGetCmd())
	cmd.AddCommand(newSignatureRequestsListCmd())
	cmd.AddCommand(newSignatureRequestsRemindCmd())
	cmd.AddCommand(newSignatureRequestsCancelCmd())
	cmd.AddCommand(newSignatureRequestsFinalCopyCmd())

	return cmd
}

// sendInput collects the flags shared by signature request and draft creation.
type sendInput struct {
	subject  string
	message  string
	signers  []string
	ccs      []string
	files    []string
	fileURLs []string
	testMode bool
	ordered  bool
}

func (in *sendInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&in.message, "message", "", "Email message")
	cmd.Flags().StringArrayVar(&in.signers, "signer", nil, `Signer as "Name <email>[:role][#pin]" (repeatable)`)
	cmd.Flags().StringArrayVar(&in.ccs, "cc", nil, `CC as "email[:role]" (repeatable)`)
	cmd.Flags().StringArrayVar(&in.files, "file", nil, "Document to upload (repeatable)")
	cmd.Flags().StringArrayVar(&in.fileURLs, "file-url", nil, "Document URL for HelloSign to download (repeatable)")
	cmd.Flags().BoolVar(&in.testMode, "test-mode", false, "Send in test mode (not legally binding)")
	cmd.Flags().BoolVar(&in.ordered, "ordered", false, "Signers sign in the order given")
}

func (in *sendInput) parseSigners() ([]api.Signer, error) {
	signers := make([]api.Signer, 0, len(in.signers))
	for i, raw := range in.signers {
		signer, err := parseSigner(raw)
		if err != nil {
			return nil, err
		}
		if in.ordered {
			order := i
			signer.Order = &order
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

func (in *sendInput) parseCCs() ([]api.CC, error) {
	ccs := make([]api.CC, 0, len(in.ccs))
	for _, raw := range in.ccs {
		cc, err := parseCC(raw)
		if err != nil {
			return nil, err
		}
		ccs = append(ccs, cc)
	}
	return ccs, nil
}

func (in *sendInput) validate(title string) error {
	if err := validation.ValidateRequestText(title, in.subject, in.message); err != nil {
		return err
	}
	for _, u := range in.fileURLs {
		if err := validation.ValidateFileURL(u); err != nil {
			return fmt.Errorf("invalid --file-url: %w", err)
		}
	}
	return nil
}

func newSignatureRequestsSendCmd() *cobra.Command {
	var (
		in           sendInput
		title        string
		form         string
		customFields []string
		metadata     []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a signature request",
		Long: strings.TrimSpace(`
Send documents out for signature.

Upload documents with --file or let HelloSign fetch them with --file-url.
With --form the request is built from a reusable form instead: each signer
and CC names the form role it fills and --custom-field fills form fields.
--form accepts a form ID or a title.
`),
		Example: strings.TrimSpace(`
  hs sr send --title NDA --signer "Jack <jack@example.com>" --file nda.pdf
  hs sr send --signer "Jack <jack@example.com>" --signer "Jill <jill@example.com>" --ordered --file-url https://example.com/contract.pdf
  hs sr send --form "Mutual NDA" --signer "Jack <jack@example.com>:Client" --cc "legal@example.com:Lawyer" --custom-field Cost=20000
  hs sr send --title NDA --signer jack@example.com --file nda.pdf --dry-run
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if len(in.signers) == 0 {
				return fmt.Errorf("at least one --signer is required")
			}
			if err := in.validate(title); err != nil {
				return err
			}
			signers, err := in.parseSigners()
			if err != nil {
				return err
			}
			ccs, err := in.parseCCs()
			if err != nil {
				return err
			}

			req := &api.SignatureRequest{
				Title:    title,
				Subject:  in.subject,
				Message:  in.message,
				Signers:  signers,
				CCs:      ccs,
				FileURLs: in.fileURLs,
				TestMode: in.testMode,
			}
			for _, raw := range metadata {
				key, value, err := parseKeyValue("--metadata", raw)
				if err != nil {
					return err
				}
				if req.Metadata == nil {
					req.Metadata = map[string]string{}
				}
				req.Metadata[key] = value
			}
			for _, raw := range customFields {
				name, value, err := parseKeyValue("--custom-field", raw)
				if err != nil {
					return err
				}
				req.CustomFields = append(req.CustomFields, api.CustomField{Name: name, Value: value})
			}

			var warnings []string
			if form != "" {
				if len(in.files) > 0 || len(in.fileURLs) > 0 {
					return fmt.Errorf("--file and --file-url cannot be combined with --form")
				}
				for _, s := range signers {
					if s.Role == "" {
						return fmt.Errorf("signer %s needs a form role (\"Name <email>:Role\") when using --form", s.EmailAddress)
					}
				}
				for _, c := range ccs {
					if c.Role == "" {
						return fmt.Errorf("cc %s needs a form role (\"email:Role\") when using --form", c.EmailAddress)
					}
				}
				if in.ordered {
					warnings = append(warnings, "--ordered is ignored with --form; the form defines the signing order")
				}
			} else {
				if len(in.files) == 0 && len(in.fileURLs) == 0 {
					return fmt.Errorf("--file or --file-url is required (or use --form)")
				}
				if len(customFields) > 0 {
					return fmt.Errorf("--custom-field requires --form")
				}
				for _, c := range ccs {
					if c.Role != "" {
						warnings = append(warnings, fmt.Sprintf("cc role %q is ignored without --form", c.Role))
					}
				}
			}

			files, closeFiles, err := openAttachments(in.files)
			if err != nil {
				return err
			}
			defer closeFiles()
			req.Files = files

			var client *api.Client
			if form != "" {
				if client, err = getClient(); err != nil {
					return err
				}
				if req.ReusableFormID, err = resolveReusableFormID(cmdContext(cmd), client, form); err != nil {
					return err
				}
			}

			if dry, err := maybeDryRun(cmd, http.MethodPost, req.Path(), api.RequestOptions{Body: req.Normalize()}, warnings...); dry {
				return err
			}

			if client == nil {
				if client, err = getClient(); err != nil {
					return err
				}
			}
			for _, w := range warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}

			info, err := client.SignatureRequests().Send(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printAction(cmd, "Sent", "signature request", info.SignatureRequestID)
			if !flags.Quiet {
				printSignatures(cmd, info.Signatures)
			}
			return nil
		}),
	}

	in.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Title of the request")
	cmd.Flags().StringVar(&form, "form", "", "Reusable form ID or title")
	cmd.Flags().StringArrayVar(&customFields, "custom-field", nil, "Reusable form field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "Metadata as key=value (repeatable)")
	flagAlias(cmd.Flags(), "form", "reusable-form")

	return cmd
}

func newSignatureRequestsGetCmd() *cobra.Command {
	var (
		wait        bool
		interval    time.Duration
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "status"},
		Short:   "Show a signature request",
		Example: strings.TrimSpace(`
  hs sr get fa5c8a0b0f492d768749333ad6fcc214c111e967
  hs sr get fa5c8a0b0f492d768749333ad6fcc214c111e967 --wait --wait-timeout 1h
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			args, err := signatureRequestArgs(args)
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			var info *api.SignatureRequestInfo
			if wait {
				if !isJSON(cmd) && !flags.Quiet {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for %s to complete...\n", args[0])
				}
				info, err = client.SignatureRequests().WaitForCompletion(cmdContext(cmd), args[0], interval, waitTimeout)
			} else {
				info, err = client.SignatureRequests().Status(cmdContext(cmd), args[0])
			}
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printSignatureRequest(cmd, info)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the request is complete, declined or in error")
	cmd.Flags().DurationVar(&interval, "interval", api.DefaultWaitInterval, "Polling interval for --wait")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 0, "Give up waiting after this long (0 waits indefinitely)")

	return cmd
}

func newSignatureRequestsListCmd() *cobra.Command {
	var (
		page   int
		since  string
		status string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List signature requests",
		Long:    "List signature requests, newest first. --since and --status filter the fetched page.",
		Example: strings.TrimSpace(`
  hs sr list --page 2
  hs sr list --status pending --since 7d
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var cutoff time.Time
			if since != "" {
				t, err := cli.ParseSince(since, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				cutoff = t
			}
			switch status {
			case "", "pending", "complete", api.StatusDeclined, "error":
			default:
				return fmt.Errorf("invalid --status %q: must be pending, complete, declined or error", status)
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			list, err := client.SignatureRequests().List(cmdContext(cmd), page)
			if err != nil {
				return err
			}
			list.SignatureRequests = filterSignatureRequests(list.SignatureRequests, cutoff, status)

			if isJSON(cmd) {
				payload := map[string]any{
					"list_info":          list.ListInfo,
					"signature_requests": list.SignatureRequests,
				}
				addRateLimitMeta(payload, client)
				return printJSON(cmd, payload)
			}
			defer warnLowRateLimit(cmd, client)
			if len(list.SignatureRequests) == 0 {
				newFormatter(cmd).Empty("No signature requests found.")
				return nil
			}

			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "TITLE", "STATUS", "SIGNED", "CREATED"})
			for _, sr := range list.SignatureRequests {
				signed := len(sr.Signatures) - len(sr.PendingSigners())
				f.Row(
					sr.SignatureRequestID,
					dashIfEmpty(sr.Title),
					sr.Status(),
					fmt.Sprintf("%d/%d", signed, len(sr.Signatures)),
					formatUnix(sr.CreatedAt),
				)
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if list.ListInfo.HasMore() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nPage %d of %d. Use --page %d for more.\n", list.ListInfo.Page, list.ListInfo.NumPages, list.ListInfo.Page+1)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to fetch")
	cmd.Flags().StringVar(&since, "since", "", "Only requests created since (7d, yesterday, monday, 2006-01-02)")
	cmd.Flags().StringVar(&status, "status", "", "Only requests with status: pending|complete|declined|error")
	return cmd
}

func filterSignatureRequests(requests []api.SignatureRequestInfo, since time.Time, status string) []api.SignatureRequestInfo {
	if since.IsZero() && status == "" {
		return requests
	}
	out := make([]api.SignatureRequestInfo, 0, len(requests))
	for i := range requests {
		sr := &requests[i]
		if !since.IsZero() && sr.CreatedAt.Time().Before(since) {
			continue
		}
		if status != "" && sr.Status() != status {
			continue
		}
		out = append(out, *sr)
	}
	return out
}

func newSignatureRequestsRemindCmd() *cobra.Command {
	var (
		email    string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "remind <id>...",
		Short: "Email a reminder to a signer",
		Long:  "Email a reminder to the signer with --email on one or more signature requests.",
		Example: strings.TrimSpace(`
  hs sr remind fa5c8a0b0f492d768749333ad6fcc214c111e967 --email jack@example.com
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			args, err := signatureRequestArgs(args)
			if err != nil {
				return err
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := validation.ValidateEmail(email); err != nil {
				return fmt.Errorf("invalid --email: %w", err)
			}
			if dryRunEach(cmd, args, "/signature_request/remind/", api.RequestOptions{
				Body: map[string]any{"email_address": email},
			}) {
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				info, err := client.SignatureRequests().Remind(cmdContext(cmd), args[0], email)
				if err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, info)
				}
				printAction(cmd, "Reminded "+email+" on", "signature request", args[0])
				return nil
			}
			results := runBulkOperation(cmdContext(cmd), args, int64(flags.Concurrency), progress, iocontext.GetIO(cmd.Context()).ErrOut,
				func(ctx context.Context, id string) (*api.SignatureRequestInfo, error) {
					return client.SignatureRequests().Remind(ctx, id, email)
				})
			return printBulkResults(cmd, "reminded", results)
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the signer to remind")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress for multiple IDs")
	flagAlias(cmd.Flags(), "email", "email-address")
	return cmd
}

func newSignatureRequestsCancelCmd() *cobra.Command {
	var (
		force    bool
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "cancel <id>...",
		Short: "Cancel incomplete signature requests",
		Example: strings.TrimSpace(`
  hs sr cancel fa5c8a0b0f492d768749333ad6fcc214c111e967 --force
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			args, err := signatureRequestArgs(args)
			if err != nil {
				return err
			}
			if dryRunEach(cmd, args, "/signature_request/cancel/", api.RequestOptions{}) {
				return nil
			}

			prompt := fmt.Sprintf("Cancel signature request %s? (y/N): ", args[0])
			if len(args) > 1 {
				prompt = fmt.Sprintf("Cancel %d signature requests? (y/N): ", len(args))
			}
			ok, err := confirmAction(cmd, confirmOptions{Prompt: prompt, CancelMessage: "Aborted.", Force: force})
			if err != nil || !ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := client.SignatureRequests().Cancel(cmdContext(cmd), args[0]); err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, map[string]any{"id": args[0], "canceled": true})
				}
				printAction(cmd, "Canceled", "signature request", args[0])
				return nil
			}
			results := runBulkOperation(cmdContext(cmd), args, int64(flags.Concurrency), progress, iocontext.GetIO(cmd.Context()).ErrOut,
				func(ctx context.Context, id string) (any, error) {
					return nil, client.SignatureRequests().Cancel(ctx, id)
				})
			return printBulkResults(cmd, "canceled", results)
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress for multiple IDs")
	return cmd
}

func newSignatureRequestsFinalCopyCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:     "final-copy <id>",
		Aliases: []string{"download"},
		Short:   "Download the signed document as PDF",
		Example: strings.TrimSpace(`
  hs sr final-copy fa5c8a0b0f492d768749333ad6fcc214c111e967 --out signed.pdf
  hs sr final-copy fa5c8a0b0f492d768749333ad6fcc214c111e967 --out - > signed.pdf
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := signatureRequestID(args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = id + ".pdf"
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			data, err := client.SignatureRequests().FinalCopy(cmdContext(cmd), id)
			if err != nil {
				return err
			}

			if outPath == "-" {
				_, err := iocontext.GetIO(cmd.Context()).Out.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"id": id, "path": outPath, "bytes": len(data)})
			}
			printAction(cmd, "Saved", "final copy to", fmt.Sprintf("%s (%d bytes)", outPath, len(data)))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&outPath, "out", "O", "", `Output file ("-" for stdout; default <id>.pdf)`)
	return cmd
}

// dryRunEach previews one POST per ID. It reports whether dry-run was active.
func dryRunEach(cmd *cobra.Command, ids []string, pathPrefix string, opts api.RequestOptions) bool {
	dry := false
	for _, id := range ids {
		ok, err := maybeDryRun(cmd, http.MethodPost, pathPrefix+strings.TrimSpace(id), opts)
		if !ok {
			return false
		}
		dry = true
		if err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
	return dry
}

func printSignatureRequest(cmd *cobra.Command, info *api.SignatureRequestInfo) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:        %s\n", info.SignatureRequestID)
	_, _ = fmt.Fprintf(out, "Title:     %s\n", dashIfEmpty(info.Title))
	_, _ = fmt.Fprintf(out, "Subject:   %s\n", dashIfEmpty(info.Subject))
	_, _ = fmt.Fprintf(out, "Status:    %s\n", info.Status())
	_, _ = fmt.Fprintf(out, "Requester: %s\n", dashIfEmpty(info.RequesterEmailAddress))
	_, _ = fmt.Fprintf(out, "Created:   %s\n", formatUnix(info.CreatedAt))
	if info.TestMode {
		_, _ = fmt.Fprintln(out, "Test mode: yes")
	}
	if len(info.CCEmailAddresses) > 0 {
		_, _ = fmt.Fprintf(out, "CC:        %s\n", strings.Join(info.CCEmailAddresses, ", "))
	}
	if info.DetailsURL != "" {
		_, _ = fmt.Fprintf(out, "Details:   %s\n", info.DetailsURL)
	}
	if len(info.Signatures) > 0 {
		_, _ = fmt.Fprintln(out)
		printSignatures(cmd, info.Signatures)
	}
}

func printSignatures(cmd *cobra.Command, signatures []api.Signature) {
	if len(signatures) == 0 {
		return
	}
	f := newFormatter(cmd)
	f.StartTable([]string{"SIGNATURE ID", "SIGNER", "EMAIL", "STATUS", "SIGNED AT"})
	for _, s := range signatures {
		f.Row(s.SignatureID, dashIfEmpty(s.SignerName), s.SignerEmailAddress, s.StatusCode, formatUnix(s.SignedAt))
	}
	_ = f.EndTable()
}
