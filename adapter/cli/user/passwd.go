package user

import (
	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the password of the signed-in user",
	Long: `Change the password of the signed-in user. The current password is
checked again; the new one comes from STOCKROOM_NEW_PASSWORD or a prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, u, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		current, err := currentPassword()
		if err != nil {
			return err
		}
		next, err := newPassword()
		if err != nil {
			return err
		}

		if !app.Users.ChangePassword(cmd.Context(), u.Username, current, next) {
			return cli.Rejected("change password")
		}
		return nil
	},
}

func currentPassword() (string, error) {
	if p := cli.PasswordFromEnv(); p != "" {
		return p, nil
	}
	return cli.PromptPassword("Current password")
}
