package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/auth"
	"github.com/hellosign/hellosign-cli/internal/config"
	"github.com/hellosign/hellosign-cli/internal/iocontext"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure HelloSign credentials stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthUseCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
		noVerify      bool
		browser       bool
		envFile       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save account credentials",
		Long: strings.TrimSpace(`
Save HelloSign credentials to your OS keychain.

Requests authenticate with HTTP Basic auth using the account email address
and password. Use --profile to keep several accounts side by side.
`),
		Example: strings.TrimSpace(`
  hs auth login --email jack@hill.com --password-stdin < password.txt
  hs auth login --email jack@hill.com --password s3cret --profile work
  hs auth login --browser
  hs auth login --env-file .env
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if browser {
				if email != "" || password != "" || passwordStdin || envFile != "" {
					return fmt.Errorf("--browser cannot be combined with --email, --password, --password-stdin or --env-file")
				}
				return runBrowserSetup(cmd)
			}

			if flagOrAliasChanged(cmd, "env-file") {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				if email == "" {
					email = envVars[config.EnvEmailAddress]
				}
				if password == "" && !passwordStdin {
					password = envVars[config.EnvPassword]
				}
				if strings.TrimSpace(flags.BaseURL) == "" {
					flags.BaseURL = envVars[config.EnvBaseURL]
				}
			}

			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := validation.ValidateEmail(email); err != nil {
				return fmt.Errorf("invalid --email: %w", err)
			}
			if passwordStdin {
				if password != "" {
					return fmt.Errorf("--password and --password-stdin cannot be used together")
				}
				line, err := bufio.NewReader(iocontext.GetIO(cmd.Context()).In).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("--password or --password-stdin is required")
			}

			account := config.Account{
				EmailAddress: email,
				Password:     password,
				BaseURL:      strings.TrimSuffix(strings.TrimSpace(flags.BaseURL), "/"),
			}

			if !noVerify {
				if _, err := verifyCredentials(cmdContext(cmd), email, password); err != nil {
					return err
				}
			}

			if err := config.SaveProfile(flags.Profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"saved":         true,
					"email_address": email,
					"profile":       profileName(flags.Profile),
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authentication credentials saved successfully!")
			_, _ = fmt.Fprintf(out, "  Email: %s\n", email)
			if account.BaseURL != "" {
				_, _ = fmt.Fprintf(out, "  Base URL: %s\n", account.BaseURL)
			}
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", profileName(flags.Profile))
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Save without checking the credentials against the API")
	cmd.Flags().BoolVar(&browser, "browser", false, "Enter credentials in a local browser page")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read HELLOSIGN_EMAIL_ADDRESS, HELLOSIGN_PASSWORD and HELLOSIGN_BASE_URL from a .env file")
	flagAlias(cmd.Flags(), "email", "email-address")
	flagAlias(cmd.Flags(), "browser", "br")
	flagAlias(cmd.Flags(), "env-file", "env")
	return cmd
}

// loadAuthEnvFile reads a .env file without touching the process environment.
func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}
	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}
	return envVars, nil
}

// loginBaseURL is the host credentials are checked against: --base-url, else
// HELLOSIGN_BASE_URL, else the default host.
func loginBaseURL() string {
	if u := strings.TrimSpace(flags.BaseURL); u != "" {
		return strings.TrimSuffix(u, "/")
	}
	return strings.TrimSuffix(strings.TrimSpace(os.Getenv(config.EnvBaseURL)), "/")
}

func verifyCredentials(ctx context.Context, email, password string) (*api.Account, error) {
	client, err := api.NewFromConfig(api.Config{EmailAddress: email, Password: password}, newClientFactory().options(loginBaseURL())...)
	if err != nil {
		return nil, err
	}
	account, err := client.Account().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("credentials rejected: %w", err)
	}
	return account, nil
}

// runBrowserSetup collects credentials through a local web page.
func runBrowserSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Opening browser for HelloSign CLI setup...")
	_, _ = fmt.Fprintln(out, "(Press Ctrl+C to cancel)")
	_, _ = fmt.Fprintln(out)

	savedBaseURL := strings.TrimSuffix(strings.TrimSpace(flags.BaseURL), "/")
	server, err := auth.NewSetupServer(
		func(ctx context.Context, creds auth.Credentials) (*api.Account, error) {
			return verifyCredentials(ctx, creds.EmailAddress, creds.Password)
		},
		func(creds auth.Credentials) error {
			return config.SaveProfile(flags.Profile, config.Account{
				EmailAddress: creds.EmailAddress,
				Password:     creds.Password,
				BaseURL:      savedBaseURL,
			})
		},
		out,
	)
	if err != nil {
		return fmt.Errorf("failed to create setup server: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdContext(cmd), 5*time.Minute)
	defer cancel()

	result, err := server.Start(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("setup timed out after 5 minutes")
		}
		return fmt.Errorf("setup failed: %w", err)
	}

	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{
			"saved":         true,
			"email_address": result.EmailAddress,
			"profile":       profileName(flags.Profile),
		})
	}
	_, _ = fmt.Fprintln(out, "Authentication credentials saved successfully!")
	_, _ = fmt.Fprintf(out, "  Email: %s\n", result.EmailAddress)
	if result.Account != nil && result.Account.AccountID != "" {
		_, _ = fmt.Fprintf(out, "  Account ID: %s\n", result.Account.AccountID)
	}
	_, _ = fmt.Fprintf(out, "  Profile: %s\n", profileName(flags.Profile))
	return nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the active credentials (password is masked).",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			usingEnv := strings.TrimSpace(os.Getenv(config.EnvEmailAddress)) != ""

			cfg, err := config.ResolveClientConfig(flags.Profile, flags.BaseURL)
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'hs auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'hs auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			profile := flags.Profile
			if profile == "" && !usingEnv {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}
			baseURL := cfg.BaseURL
			if baseURL == "" {
				baseURL = api.DefaultBaseURL
			}
			source := "keychain"
			if usingEnv && flags.Profile == "" {
				source = "env"
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"email_address": cfg.EmailAddress,
					"password":      maskSecret(cfg.Password),
					"base_url":      baseURL,
					"source":        source,
				}
				if profile != "" {
					payload["profile"] = profile
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Email: %s\n", cfg.EmailAddress)
			_, _ = fmt.Fprintf(out, "  Password: %s\n", maskSecret(cfg.Password))
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", baseURL)
			if profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			_, _ = fmt.Fprintf(out, "  Source: %s\n", source)
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}
			if _, err := config.LoadProfile(profile); errors.Is(err, config.ErrNotConfigured) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			}
			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			printAction(cmd, "Removed", "profile", profile)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List saved profiles",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profiles": profiles, "current": current})
			}
			if len(profiles) == 0 {
				newFormatter(cmd).Empty("No profiles saved. Run 'hs auth login'.")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p)
			}
			return nil
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(profile); err != nil {
				return fmt.Errorf("profile %q: %w", profile, err)
			}
			if err := config.SetCurrentProfile(profile); err != nil {
				return err
			}
			printAction(cmd, "Switched to", "profile", profile)
			return nil
		}),
	}
}

func profileName(profile string) string {
	if strings.TrimSpace(profile) == "" {
		return "default"
	}
	return profile
}

// maskSecret keeps the first and last character of long secrets.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:1] + strings.Repeat("*", len(secret)-2) + secret[len(secret)-1:]
}
