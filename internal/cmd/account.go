package cmd

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"acc", "ac"},
		Short:   "Manage account",
	}

	cmd.AddCommand(newAccountGetCmd())
	cmd.AddCommand(newAccountUpdateCmd())
	cmd.AddCommand(newAccountCreateCmd())

	return cmd
}

func newAccountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Aliases: []string{"g"},
		Short:   "Get account details",
		Example: "hs account get",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			account, err := client.Account().Get(cmdContext(cmd))
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, account)
			}
			printAccount(cmd, account)
			return nil
		}),
	}
}

func newAccountUpdateCmd() *cobra.Command {
	var callbackURL string

	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"up"},
		Short:   "Update the account callback URL",
		Example: "hs account update --callback-url https://example.com/hellosign",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("callback-url") {
				return fmt.Errorf("--callback-url is required")
			}
			callbackURL = strings.TrimSpace(callbackURL)
			if err := validation.ValidateCallbackURL(callbackURL); err != nil {
				return fmt.Errorf("invalid --callback-url: %w", err)
			}

			if dry, err := maybeDryRun(cmd, http.MethodPost, "/account", api.RequestOptions{
				Body: map[string]any{"callback_url": callbackURL},
			}); dry {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			account, err := client.Account().Update(cmdContext(cmd), callbackURL)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, account)
			}
			printAction(cmd, "Updated", "account", account.AccountID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&callbackURL, "callback-url", "", "URL that receives account events (empty to clear)")

	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new HelloSign account",
		Long:  "Create a new account. No stored credentials are needed.",
		Example: strings.TrimSpace(`
  hs account create --email new@example.com --password s3cret
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := validation.ValidateEmail(email); err != nil {
				return fmt.Errorf("invalid --email: %w", err)
			}

			body := map[string]any{"email_address": email}
			if password != "" {
				body["password"] = password
			}
			if dry, err := maybeDryRun(cmd, http.MethodPost, "/account/create", api.RequestOptions{
				Body:            body,
				AuthNotRequired: true,
			}); dry {
				return err
			}

			account, err := newClientFactory().anonymous().Account().Create(cmdContext(cmd), email, password)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, account)
			}
			printAction(cmd, "Created", "account", account.AccountID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password of the new account")
	flagAlias(cmd.Flags(), "email", "email-address")

	return cmd
}

func printAccount(cmd *cobra.Command, account *api.Account) {
	f := newFormatter(cmd)
	f.StartTable([]string{"ID", "EMAIL", "ROLE", "PAID", "CALLBACK URL"})
	f.Row(account.AccountID, account.EmailAddress, dashIfEmpty(account.RoleCode), strconv.FormatBool(account.IsPaidHS), dashIfEmpty(account.CallbackURL))
	_ = f.EndTable()

	if q := account.Quotas; q != nil {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Quotas:")
		_, _ = fmt.Fprintf(out, "  API signature requests left: %s\n", quota(q.APISignatureRequestsLeft))
		_, _ = fmt.Fprintf(out, "  Documents left: %s\n", quota(q.DocumentsLeft))
		_, _ = fmt.Fprintf(out, "  Templates left: %s\n", quota(q.TemplatesLeft))
	}
}

// quota renders a quota; a missing value means unlimited.
func quota(v *int) string {
	if v == nil {
		return "unlimited"
	}
	return strconv.Itoa(*v)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
