package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/pkg/observability"
)

// Environment variables read by the login gate.
const (
	EnvUsername = "STOCKROOM_USERNAME"
	EnvPassword = "STOCKROOM_PASSWORD"
)

// ErrNotSignedIn is returned by data commands when the sign-in fails.
var ErrNotSignedIn = errors.New("not signed in")

// ErrNotInitialized is returned when the application was not wired.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// PromptPassword reads a password without echo. Replaced in tests.
var PromptPassword = func(label string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no terminal to prompt for the password: set %s", EnvPassword)
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// PromptLine reads one line of input. Replaced in tests.
var PromptLine = func(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// PasswordFromEnv returns the sign-in password set in the environment.
func PasswordFromEnv() string { return os.Getenv(EnvPassword) }

// RequireApp returns the wired application.
func RequireApp() (*App, error) {
	a := GetApp()
	if a == nil || a.Login == nil {
		return nil, ErrNotInitialized
	}
	return a, nil
}

// RequireLogin signs in with the configured credentials, makes the user
// current for new articles and records it in the command context.
func RequireLogin(cmd *cobra.Command) (*App, *identity.User, error) {
	a, err := RequireApp()
	if err != nil {
		return nil, nil, err
	}
	if u := a.Login.CurrentUser(); u != nil {
		return a, u, nil
	}

	name := username
	if name == "" {
		name = os.Getenv(EnvUsername)
	}
	if name == "" {
		if name, err = PromptLine("Username"); err != nil {
			return nil, nil, err
		}
	}

	password := PasswordFromEnv()
	if password == "" {
		if password, err = PromptPassword("Password"); err != nil {
			return nil, nil, err
		}
	}

	if !a.Login.Login(cmd.Context(), name, password) {
		return nil, nil, ErrNotSignedIn
	}

	u := a.Login.CurrentUser()
	if a.Articles != nil {
		a.Articles.SetCurrentUser(u)
	}
	cmd.SetContext(observability.WithUser(cmd.Context(), u.Username))
	log().InfoContext(cmd.Context(), "signed in", observability.UserKey, u.Username)
	return a, u, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the credentials and show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, u, err := RequireLogin(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s [%s]\n", u, u.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
