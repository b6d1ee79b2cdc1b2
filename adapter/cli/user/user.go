package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the user command group
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Register accounts, list them and change passwords.

The first account can be registered without signing in; it is always an
administrator. Later accounts are registered by an administrator.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(passwdCmd)
}
