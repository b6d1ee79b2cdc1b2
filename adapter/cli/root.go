package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/pkg/observability"
)

var (
	username string
	logger   *slog.Logger
)

type commandStartKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Stockroom - inventory of articles, models and spaces",
	Long: `Stockroom keeps the inventory of an organisation: article types and
models, the individual articles registered against them, and the
departments and spaces that hold them.

Data commands require a sign-in. The username comes from --username or
STOCKROOM_USERNAME, the password from STOCKROOM_PASSWORD or a prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := observability.NewCommandContext(cmd.Context(), cmd.CommandPath())
		ctx = withStart(ctx, time.Now())
		cmd.SetContext(ctx)
		log().InfoContext(ctx, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		started, ok := ctx.Value(commandStartKey{}).(time.Time)
		if !ok {
			return
		}
		observability.LogDuration(ctx, log(), cmd.CommandPath(), started)
	},
}

// Execute runs the command line, prints the notifications the command
// queued and then the error, if any.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	FlushNotifications(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// FlushNotifications writes and clears the queued notifications.
func FlushNotifications(w io.Writer) {
	a := GetApp()
	if a == nil || a.Notifications == nil {
		return
	}
	for _, m := range a.Notifications.Drain() {
		fmt.Fprintln(w, m.Text)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "sign in as this user (default $STOCKROOM_USERNAME)")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

func withStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, commandStartKey{}, t)
}

func log() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}
