// Package articletype holds the commands that manage article types.
package articletype

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

// Cmd is the type command group
var Cmd = &cobra.Command{
	Use:   "type",
	Short: "Manage article types",
	Long:  `Add, list and remove the types article models are classified by.`,
}

var description string

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an article type",
	Long: `Add an article type. Names are unique.

Examples:
  stockroom type add Laptop
  stockroom type add Projector --description "Ceiling and mobile projectors"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		t, ok := app.Catalog.AddType(cmd.Context(), args[0], description)
		if !ok {
			return cli.Rejected("add article type")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Article type created: %d\n", t.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List article types",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}
		if err := app.Catalog.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list article types: %w", err)
		}

		types := app.Catalog.Types()
		out := cmd.OutOrStdout()
		if len(types) == 0 {
			fmt.Fprintln(out, "No article types found.")
			return nil
		}
		fmt.Fprintf(out, "Article types (%d):\n", len(types))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range types {
			fmt.Fprintf(out, "%4d  %-24s %s\n", t.ID, t.Name, t.Description)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove [id]",
	Short:   "Remove an article type no model uses",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}
		if !app.Catalog.RemoveType(cmd.Context(), id) {
			return cli.Rejected("remove article type")
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(removeCmd)

	addCmd.Flags().StringVar(&description, "description", "", "type description")
}
