package user

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List user accounts",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		users, err := app.Users.Users(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Users (%d):\n", len(users))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, u := range users {
			fmt.Fprintf(out, "%4d  %-20s %-6s %s\n", u.ID, u.Username, u.Role, u.FullName)
		}
		return nil
	},
}
