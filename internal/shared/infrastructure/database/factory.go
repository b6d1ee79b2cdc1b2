package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"
)

// Connection is an open database handle. DB exposes the raw pool for
// migrations; Gorm is the ORM session the persistence context builds on.
type Connection interface {
	Driver() Driver
	DB() *sql.DB
	Gorm() *gorm.DB
	Ping(ctx context.Context) error
	Close() error
}

// Config holds database configuration.
type Config struct {
	// Driver selects the backend. Empty or "auto" detects it from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the database file. Defaults to ~/.stockroom/stockroom.db.
	// ":memory:" opens a private in-memory database.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int

	// Logger receives ORM statement logs. Nil discards them.
	Logger *slog.Logger

	// SlowQuery is the threshold above which statements are logged as warnings.
	SlowQuery time.Duration
}

// NewConnection opens a connection for the configured backend.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	switch driver {
	case DriverPostgres:
		if newPostgresConnection == nil {
			return nil, fmt.Errorf("postgres driver not registered")
		}
		return newPostgresConnection(ctx, cfg)
	case DriverSQLite:
		if newSQLiteConnection == nil {
			return nil, fmt.Errorf("sqlite driver not registered")
		}
		if cfg.SQLitePath == "" && cfg.URL != "" {
			cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
		}
		return newSQLiteConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// GormConfig returns the ORM settings shared by both backends.
func GormConfig(cfg Config) *gorm.Config {
	return &gorm.Config{
		Logger:  NewGormLogger(cfg.Logger, cfg.SlowQuery),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".stockroom", "stockroom.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// The backend packages register themselves from init so that importing
// them for side effects is enough to enable a driver.
var (
	newPostgresConnection func(ctx context.Context, cfg Config) (Connection, error)
	newSQLiteConnection   func(ctx context.Context, cfg Config) (Connection, error)
)

// RegisterPostgresDriver registers the PostgreSQL connection factory.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newPostgresConnection = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newSQLiteConnection = fn
}
