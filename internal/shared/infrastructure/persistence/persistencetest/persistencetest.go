// Package persistencetest opens migrated in-memory stores for tests.
package persistencetest

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database/sqlite"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/migrations"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
)

// Store is a migrated in-memory SQLite database and the context over it.
type Store struct {
	Conn    database.Connection
	Context *persistence.Context
	Logger  *slog.Logger
}

// Option adjusts the context configuration.
type Option func(*persistence.Config)

// WithPublisher publishes committed changes to p.
func WithPublisher(p eventbus.Publisher) Option {
	return func(c *persistence.Config) { c.Publisher = p }
}

// New opens the store and closes it when the test ends.
func New(t testing.TB, logger *slog.Logger, opts ...Option) *Store {
	t.Helper()
	ctx := context.Background()

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn.DB(), database.DriverSQLite)
	require.NoError(t, err)

	var cfg persistence.Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		Conn:    conn,
		Context: persistence.NewContext(conn.Gorm(), cfg, logger),
		Logger:  logger,
	}
}
