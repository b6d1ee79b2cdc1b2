// Package space holds the commands that manage spaces.
package space

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

// Cmd is the space command group
var Cmd = &cobra.Command{
	Use:   "space",
	Short: "Manage rooms and storage locations",
}

var (
	description  string
	departmentID int
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a space",
	Long: `Add a room or storage location, optionally owned by a department.

Examples:
  stockroom space add "Room 101" --department 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		s, ok := app.Catalog.AddSpace(cmd.Context(), args[0], description, cli.OptionalID(departmentID))
		if !ok {
			return cli.Rejected("add space")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Space created: %d\n", s.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List spaces",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}
		if err := app.Catalog.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list spaces: %w", err)
		}

		spaces := app.Catalog.Spaces()
		out := cmd.OutOrStdout()
		if len(spaces) == 0 {
			fmt.Fprintln(out, "No spaces found.")
			return nil
		}
		fmt.Fprintf(out, "Spaces (%d):\n", len(spaces))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, s := range spaces {
			dept := "-"
			if s.DepartmentID != nil {
				dept = fmt.Sprint(*s.DepartmentID)
			}
			fmt.Fprintf(out, "%4d  %-24s dept %-4s %s\n", s.ID, s.Name, dept, s.Description)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)

	addCmd.Flags().StringVar(&description, "description", "", "space description")
	addCmd.Flags().IntVar(&departmentID, "department", 0, "owning department id")
}
