// Package article holds the commands that register and look up articles.
package article

import (
	"github.com/spf13/cobra"
)

// Cmd is the article command group
var Cmd = &cobra.Command{
	Use:   "article",
	Short: "Manage articles",
	Long: `Register individual articles against a model, list and show them,
retire them or remove them.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(retireCmd)
}
