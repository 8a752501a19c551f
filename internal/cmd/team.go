package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "team",
		Aliases: []string{"tm"},
		Short:   "Manage the account's team",
	}

	cmd.AddCommand(newTeamGetCmd())
	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamUpdateCmd())
	cmd.AddCommand(newTeamDestroyCmd())
	cmd.AddCommand(newTeamAddMemberCmd())
	cmd.AddCommand(newTeamRemoveMemberCmd())

	return cmd
}

func newTeamGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Aliases: []string{"g"},
		Short:   "Show the team and its members",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			team, err := client.Team().Get(cmdContext(cmd))
			if err != nil {
				return err
			}
			return printTeam(cmd, team)
		}),
	}
}

func newTeamCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a team",
		Example: "hs team create 'Legal'",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return runTeamChange(cmd, "/team/create", map[string]any{"name": name}, "Created", func(team api.TeamService) (*api.Team, error) {
				return team.Create(cmdContext(cmd), name)
			})
		}),
	}
}

func newTeamUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <name>",
		Aliases: []string{"rename"},
		Short:   "Rename the team",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return runTeamChange(cmd, "/team", map[string]any{"name": name}, "Updated", func(team api.TeamService) (*api.Team, error) {
				return team.Update(cmdContext(cmd), name)
			})
		}),
	}
}

func newTeamDestroyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the team",
		Long:  "Delete the team. Members keep their accounts.",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if dry, err := maybeDryRun(cmd, http.MethodPost, "/team/destroy", api.RequestOptions{}); dry {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:        "Delete the team? (y/N): ",
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if err := client.Team().Destroy(cmdContext(cmd)); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"destroyed": true})
			}
			printAction(cmd, "Destroyed", "team", "")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func newTeamAddMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add-member <email>",
		Aliases: []string{"invite"},
		Short:   "Invite an account to the team",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			return runTeamChange(cmd, "/team/add_member", map[string]any{"email_address": email}, "Added member "+email+" to", func(team api.TeamService) (*api.Team, error) {
				return team.AddMember(cmdContext(cmd), email)
			})
		}),
	}
}

func newTeamRemoveMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member <email>",
		Short: "Remove an account from the team",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			return runTeamChange(cmd, "/team/remove_member", map[string]any{"email_address": email}, "Removed member "+email+" from", func(team api.TeamService) (*api.Team, error) {
				return team.RemoveMember(cmdContext(cmd), email)
			})
		}),
	}
}

// runTeamChange runs one team mutation, honoring --dry-run.
func runTeamChange(cmd *cobra.Command, path string, body map[string]any, action string, call func(api.TeamService) (*api.Team, error)) error {
	if dry, err := maybeDryRun(cmd, http.MethodPost, path, api.RequestOptions{Body: body}); dry {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}
	team, err := call(client.Team())
	if err != nil {
		return err
	}
	if isJSON(cmd) {
		return printJSON(cmd, team)
	}
	printAction(cmd, action, "team", team.Name)
	return nil
}

func printTeam(cmd *cobra.Command, team *api.Team) error {
	if isJSON(cmd) {
		return printJSON(cmd, team)
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Team: %s\n\n", team.Name)

	f := newFormatter(cmd)
	f.StartTable([]string{"ACCOUNT ID", "EMAIL", "ROLE", "STATUS"})
	for _, a := range team.Accounts {
		f.Row(a.AccountID, a.EmailAddress, dashIfEmpty(a.RoleCode), "member")
	}
	for _, a := range team.InvitedAccounts {
		f.Row(dashIfEmpty(a.AccountID), a.EmailAddress, dashIfEmpty(a.RoleCode), "invited")
	}
	return f.EndTable()
}
