// Package department holds the commands that manage departments.
package department

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

// Cmd is the department command group
var Cmd = &cobra.Command{
	Use:   "department",
	Short: "Manage departments",
}

var addCmd = &cobra.Command{
	Use:   "add [code] [name]",
	Short: "Add a department",
	Long: `Add a department. Codes are unique and stored upper-case.

Examples:
  stockroom department add it "Information Technology"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		d, ok := app.Catalog.AddDepartment(cmd.Context(), args[0], args[1])
		if !ok {
			return cli.Rejected("add department")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Department created: %d\n", d.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List departments",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}
		if err := app.Catalog.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list departments: %w", err)
		}

		departments := app.Catalog.Departments()
		out := cmd.OutOrStdout()
		if len(departments) == 0 {
			fmt.Fprintln(out, "No departments found.")
			return nil
		}
		fmt.Fprintf(out, "Departments (%d):\n", len(departments))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, d := range departments {
			fmt.Fprintf(out, "%4d  %-8s %s\n", d.ID, d.Code, d.Name)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
