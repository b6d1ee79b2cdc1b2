// Package clitest wires a CLI application over a temporary SQLite store.
package clitest

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/internal/app"
	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/pkg/config"
)

// Password is the password of every account created by the helpers.
const Password = "correct horse"

// Setup builds a container over a fresh database, installs it as the CLI
// application and clears the credentials in the environment.
func Setup(t *testing.T) (*cli.App, *app.Container) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                  "test",
		DatabaseDriver:          "sqlite",
		SQLitePath:              filepath.Join(t.TempDir(), "stockroom.db"),
		AutoMigrate:             true,
		LoginMaxAttempts:        5,
		LoginLockout:            time.Minute,
		BcryptCost:              bcrypt.MinCost,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          time.Second,
		NotifyDuration:          time.Minute,
	}

	container, err := app.NewContainer(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	a := cli.NewApp(container.Login, container.Users, container.Articles, container.Catalog, container.Notifications)
	a.SetMigrator(container.Migrate)
	a.SetHealth(container.Health)
	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })

	t.Setenv(cli.EnvUsername, "")
	t.Setenv(cli.EnvPassword, "")
	return a, container
}

// SignInAs creates an account and exports its credentials.
func SignInAs(t *testing.T, c *app.Container, username string, role identity.Role) {
	t.Helper()
	_, err := c.AuthService.Register(context.Background(), auth.RegisterRequest{
		Username: username,
		Password: Password,
		Role:     role,
	})
	require.NoError(t, err)
	t.Setenv(cli.EnvUsername, username)
	t.Setenv(cli.EnvPassword, Password)
}

// Run calls the command's RunE with flags applied and returns its output.
// Flags are reset to their defaults afterwards.
func Run(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()

	// Flag also finds the persistent flags of the parents.
	for name, value := range flags {
		f := cmd.Flag(name)
		require.NotNil(t, f, "unknown flag %s", name)
		require.NoError(t, f.Value.Set(value))
		f.Changed = true
	}
	t.Cleanup(func() {
		for name := range flags {
			f := cmd.Flag(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// Messages drains the notifications queued so far.
func Messages(a *cli.App) []string {
	var texts []string
	for _, m := range a.Notifications.Drain() {
		texts = append(texts, m.Text)
	}
	return texts
}
