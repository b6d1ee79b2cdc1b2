package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Run executes every migration for driver in file name order.
// Statements use IF NOT EXISTS, so running twice is harmless.
func Run(ctx context.Context, db *sql.DB, driver database.Driver) ([]string, error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, err
	}

	names, err := Files(driver)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		migration, err := fs.ReadFile(files, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return names, nil
}

// Files lists the up migrations for driver, sorted.
func Files(driver database.Driver) ([]string, error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, err
	}

	entries, err := files.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func dirFor(driver database.Driver) (string, error) {
	switch driver {
	case database.DriverSQLite:
		return "sqlite", nil
	case database.DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
