package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
)

func newDraftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drafts",
		Aliases: []string{"draft", "unclaimed-drafts"},
		Short:   "Create unclaimed drafts to finish in the HelloSign UI",
	}

	cmd.AddCommand(newDraftsCreateCmd())
	return cmd
}

func newDraftsCreateCmd() *cobra.Command {
	var (
		in        sendInput
		draftType string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Upload documents as an unclaimed draft",
		Long: strings.TrimSpace(`
Upload documents as an unclaimed draft and print the claim URL.

A "send_document" draft (the default) opens the send flow, where the
recipients and fields are set up in the UI. A "request_signature" draft
needs at least one --signer.
`),
		Example: strings.TrimSpace(`
  hs drafts create --file contract.pdf
  hs drafts create --type request_signature --signer "Jack <jack@example.com>" --file-url https://example.com/contract.pdf
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			switch draftType {
			case "send_document", "request_signature":
			default:
				return fmt.Errorf("invalid --type %q: must be send_document or request_signature", draftType)
			}
			if len(in.files) == 0 && len(in.fileURLs) == 0 {
				return fmt.Errorf("--file or --file-url is required")
			}
			if draftType == "request_signature" && len(in.signers) == 0 {
				return fmt.Errorf("--signer is required for request_signature drafts")
			}
			if err := in.validate(""); err != nil {
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
			files, closeFiles, err := openAttachments(in.files)
			if err != nil {
				return err
			}
			defer closeFiles()

			draft := &api.UnclaimedDraft{
				Type:     draftType,
				Subject:  in.subject,
				Message:  in.message,
				Signers:  signers,
				CCs:      ccs,
				Files:    files,
				FileURLs: in.fileURLs,
				TestMode: in.testMode,
			}

			if dry, err := maybeDryRun(cmd, http.MethodPost, "/unclaimed_draft/create", api.RequestOptions{Body: draft.Normalize()}); dry {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			info, err := client.UnclaimedDrafts().Create(cmdContext(cmd), draft)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Claim URL: %s\n", info.ClaimURL)
			if info.ExpiresAt != 0 {
				_, _ = fmt.Fprintf(out, "Expires:   %s\n", formatUnix(info.ExpiresAt))
			}
			return nil
		}),
	}

	in.register(cmd)
	cmd.Flags().StringVar(&draftType, "type", "send_document", "Draft type: send_document or request_signature")
	return cmd
}
