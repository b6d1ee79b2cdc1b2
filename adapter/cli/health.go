package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/pkg/observability"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"health"},
	Short:   "Check the database and the optional services",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("app not initialized")
		}

		results := app.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "%-14s %-10s %s\n", res.Name, res.Status, res.Message)
		}

		overall := observability.OverallStatus(results)
		fmt.Fprintf(out, "overall: %s\n", overall)
		if overall == observability.HealthStatusUnhealthy {
			return errors.New("stockroom is unhealthy")
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Migrate == nil {
			return fmt.Errorf("app not initialized")
		}

		applied, err := app.Migrate(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, name := range applied {
			fmt.Fprintf(out, "ran %s\n", name)
		}
		fmt.Fprintf(out, "Schema is up to date (%d migrations).\n", len(applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
}
