package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/cache"
	"github.com/hellosign/hellosign-cli/internal/resolve"
	"github.com/hellosign/hellosign-cli/internal/urlparse"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

const (
	reusableFormsCacheKey = "reusable_forms"
	maxReusableFormPages  = 50
)

func newReusableFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reusable-forms",
		Aliases: []string{"forms", "rf"},
		Short:   "Manage reusable forms",
		Long:    "List and inspect reusable forms (templates) and control who can use them.",
	}

	cmd.AddCommand(newReusableFormsListCmd())
	cmd.AddCommand(newReusableFormsGetCmd())
	cmd.AddCommand(newReusableFormsAddUserCmd())
	cmd.AddCommand(newReusableFormsRemoveUserCmd())

	return cmd
}

func newReusableFormsListCmd() *cobra.Command {
	var (
		page    int
		all     bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reusable forms",
		Example: strings.TrimSpace(`
  hs forms list
  hs forms list --page 2
  hs forms list --all --refresh
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			var forms []api.ReusableForm
			var info *api.ListInfo
			if all {
				forms, err = loadReusableForms(cmdContext(cmd), client, refresh)
				if err != nil {
					return err
				}
			} else {
				list, err := client.ReusableForms().List(cmdContext(cmd), page)
				if err != nil {
					return err
				}
				forms = list.ReusableForms
				info = &list.ListInfo
			}

			if isJSON(cmd) {
				payload := map[string]any{"reusable_forms": forms}
				if info != nil {
					payload["list_info"] = info
				}
				addRateLimitMeta(payload, client)
				return printJSON(cmd, payload)
			}

			defer warnLowRateLimit(cmd, client)
			if len(forms) == 0 {
				newFormatter(cmd).Empty("No reusable forms found.")
				return nil
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "TITLE", "SIGNER ROLES", "CC ROLES"})
			for _, form := range forms {
				f.Row(form.ReusableFormID, form.Title, roleNames(form.SignerRoles), roleNames(form.CCRoles))
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if info != nil && info.HasMore() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nPage %d of %d. Use --page %d for more.\n", info.Page, info.NumPages, info.Page+1)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to fetch")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Fetch every page (cached)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cache when used with --all")
	return cmd
}

func newReusableFormsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id|title>",
		Aliases: []string{"g", "show"},
		Short:   "Show a reusable form",
		Long:    "Show a reusable form by ID, or by a (fuzzy) title match.",
		Example: strings.TrimSpace(`
  hs forms get c26b8a16784a872da37ea946b9ddec7c1e11dff6
  hs forms get "Mutual NDA"
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			id, err := resolveReusableFormID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}
			form, err := client.ReusableForms().Get(cmdContext(cmd), id)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, form)
			}
			printReusableForm(cmd, form)
			return nil
		}),
	}
}

func newReusableFormsAddUserCmd() *cobra.Command {
	return newReusableFormUserCmd("add-user", "Give an account access to a reusable form", "/reusable_form/add_user/", "Granted",
		func(ctx context.Context, forms api.ReusableFormsService, id, email string) (*api.ReusableForm, error) {
			return forms.AddUser(ctx, id, email)
		})
}

func newReusableFormsRemoveUserCmd() *cobra.Command {
	return newReusableFormUserCmd("remove-user", "Revoke an account's access to a reusable form", "/reusable_form/remove_user/", "Revoked",
		func(ctx context.Context, forms api.ReusableFormsService, id, email string) (*api.ReusableForm, error) {
			return forms.RemoveUser(ctx, id, email)
		})
}

func newReusableFormUserCmd(use, short, pathPrefix, action string, call func(context.Context, api.ReusableFormsService, string, string) (*api.ReusableForm, error)) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   use + " <id|title>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := validation.ValidateEmail(email); err != nil {
				return fmt.Errorf("invalid --email: %w", err)
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			id, err := resolveReusableFormID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			if dry, err := maybeDryRun(cmd, http.MethodPost, pathPrefix+id, api.RequestOptions{
				Body: map[string]any{"email_address": email},
			}); dry {
				return err
			}

			form, err := call(cmdContext(cmd), client.ReusableForms(), id, email)
			if err != nil {
				return err
			}
			invalidateReusableForms(cmdContext(cmd), client)

			if isJSON(cmd) {
				return printJSON(cmd, form)
			}
			printAction(cmd, action, "access for "+email+" to reusable form", form.ReusableFormID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")
	flagAlias(cmd.Flags(), "email", "email-address")
	return cmd
}

// loadReusableForms returns every reusable form of the account, served from
// the cache unless refresh is set.
func loadReusableForms(ctx context.Context, client *api.Client, refresh bool) ([]api.ReusableForm, error) {
	store, err := openFormsCache(client)
	if err != nil {
		slog.Debug("reusable form cache unavailable", "error", err)
		store = nil
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	var forms []api.ReusableForm
	if store != nil && !refresh && store.Get(ctx, &forms) {
		return forms, nil
	}

	forms = nil
	for page := 1; page <= maxReusableFormPages; page++ {
		list, err := client.ReusableForms().List(ctx, page)
		if err != nil {
			return nil, err
		}
		forms = append(forms, list.ReusableForms...)
		if !list.ListInfo.HasMore() {
			break
		}
	}

	if store != nil {
		store.Put(ctx, forms)
	}
	return forms, nil
}

func invalidateReusableForms(ctx context.Context, client *api.Client) {
	store, err := openFormsCache(client)
	if err != nil || store == nil {
		return
	}
	store.Clear(ctx)
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func openFormsCache(client *api.Client) (cache.Store, error) {
	dir := resolveCacheDir()
	if dir == "" && cache.RedisURL() == "" {
		return nil, fmt.Errorf("could not determine cache directory")
	}
	return cache.Open(dir, reusableFormsCacheKey, client.BaseURL(), client.Credentials().EmailAddress)
}

// resolveReusableFormID accepts a form ID or a title. Titles are matched
// fuzzily against the account's forms.
func resolveReusableFormID(ctx context.Context, client *api.Client, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("reusable form ID or title is required")
	}
	if urlparse.IsURL(query) {
		return urlparse.ResourceID(query, urlparse.ReusableForm)
	}
	if resolve.LooksLikeID(query) {
		return query, nil
	}
	forms, err := loadReusableForms(ctx, client, false)
	if err != nil {
		return "", err
	}
	items := make([]resolve.Named, 0, len(forms))
	for _, f := range forms {
		items = append(items, resolve.Named{ID: f.ReusableFormID, Name: f.Title})
	}
	id, err := resolve.FuzzyMatch(query, items)
	if err != nil {
		return "", fmt.Errorf("reusable form %q: %w", query, err)
	}
	return id, nil
}

func roleNames(roles []api.FormRole) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func printReusableForm(cmd *cobra.Command, form *api.ReusableForm) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:            %s\n", form.ReusableFormID)
	_, _ = fmt.Fprintf(out, "Title:         %s\n", form.Title)
	if form.Message != "" {
		_, _ = fmt.Fprintf(out, "Message:       %s\n", form.Message)
	}
	_, _ = fmt.Fprintf(out, "Signer roles:  %s\n", roleNames(form.SignerRoles))
	_, _ = fmt.Fprintf(out, "CC roles:      %s\n", roleNames(form.CCRoles))
	_, _ = fmt.Fprintf(out, "Creator:       %s\n", strconv.FormatBool(form.IsCreator))

	if len(form.CustomFields) > 0 {
		_, _ = fmt.Fprintln(out, "\nCustom fields:")
		for _, field := range form.CustomFields {
			_, _ = fmt.Fprintf(out, "  %s (%s)\n", field.Name, dashIfEmpty(field.Type))
		}
	}
	if len(form.Accounts) > 0 {
		_, _ = fmt.Fprintln(out, "\nAccounts:")
		for _, a := range form.Accounts {
			_, _ = fmt.Fprintf(out, "  %s %s\n", a.AccountID, a.EmailAddress)
		}
	}
}
