package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterSQLiteDriver(NewConnection)
}

// Pragmas applied to every connection.
// WAL lets readers proceed during a write, foreign_keys enforces the
// relationships between articles, models, types, spaces and departments.
const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Connection is a SQLite database opened through modernc and wrapped by GORM.
type Connection struct {
	db   *sql.DB
	gorm *gorm.DB
}

// NewConnection opens the SQLite database named by cfg.SQLitePath.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	if path != ":memory:" {
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single writer. This also keeps an in-memory database alive on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	orm, err := gorm.Open(&gormsqlite.Dialector{DriverName: "sqlite", Conn: db}, database.GormConfig(cfg))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise ORM: %w", err)
	}

	return &Connection{db: db, gorm: orm}, nil
}

// DSN appends the connection pragmas to a database path.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func (c *Connection) DB() *sql.DB              { return c.db }
func (c *Connection) Gorm() *gorm.DB           { return c.gorm }
func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

// Ping verifies the connection is still alive.
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database.
func (c *Connection) Close() error {
	return c.db.Close()
}
