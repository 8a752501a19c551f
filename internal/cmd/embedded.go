package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEmbeddedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "embedded",
		Aliases: []string{"emb"},
		Short:   "Embedded signing helpers",
	}

	cmd.AddCommand(newEmbeddedSignURLCmd())
	return cmd
}

func newEmbeddedSignURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-url <signature-id>",
		Short: "Get a short-lived URL for signing in an iframe",
		Long: `Get a short-lived URL for signing in an iframe.

The argument is the ID of one signature (one signer's slot), as listed by
"hs sr get", not the signature request ID.`,
		Example: "hs embedded sign-url 78caf2a1d01cd39cea2bc1cbb340dac3",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			signURL, err := client.Embedded().SignURL(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, signURL)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), signURL.SignURL)
			if signURL.ExpiresAt != 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Expires: %s\n", formatUnix(signURL.ExpiresAt))
			}
			return nil
		}),
	}
}
