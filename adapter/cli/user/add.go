package user

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
)

// EnvNewPassword supplies the password of a new account without a prompt.
const EnvNewPassword = "STOCKROOM_NEW_PASSWORD"

var (
	fullName     string
	email        string
	role         string
	departmentID int
)

var addCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Register a user",
	Long: `Register a user account.

Examples:
  stockroom user add admin                       # first account, no sign-in
  stockroom user add jdoe --full-name "Jane Doe" --email jane@example.com
  stockroom user add boss --role admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		bootstrap, err := app.Users.NeedsBootstrap(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to check for existing users: %w", err)
		}

		req := auth.RegisterRequest{
			Username:     args[0],
			FullName:     fullName,
			Email:        email,
			Role:         identity.Role(role),
			DepartmentID: cli.OptionalID(departmentID),
		}
		if bootstrap {
			req.Role = identity.RoleAdmin
		} else {
			_, current, err := cli.RequireLogin(cmd)
			if err != nil {
				return err
			}
			if !current.IsAdmin() {
				return errors.New("only administrators can register users")
			}
		}

		if req.Password, err = newPassword(); err != nil {
			return err
		}

		u, ok := app.Users.Register(cmd.Context(), req)
		if !ok {
			return cli.Rejected("register user")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User created: %d\n", u.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  username: %s\n", u.Username)
		fmt.Fprintf(cmd.OutOrStdout(), "  role: %s\n", u.Role)
		return nil
	},
}

func newPassword() (string, error) {
	if p := os.Getenv(EnvNewPassword); p != "" {
		return p, nil
	}
	first, err := cli.PromptPassword("New password")
	if err != nil {
		return "", err
	}
	second, err := cli.PromptPassword("Repeat password")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func init() {
	addCmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	addCmd.Flags().StringVar(&email, "email", "", "email address")
	addCmd.Flags().StringVar(&role, "role", string(identity.RoleStaff), "role (admin, staff)")
	addCmd.Flags().IntVar(&departmentID, "department", 0, "department id")
}
