package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterPostgresDriver(NewConnection)
}

// Connection is a pgx pool exposed to GORM through database/sql.
type Connection struct {
	pool *pgxpool.Pool
	db   *sql.DB
	gorm *gorm.DB
}

// NewConnection creates a PostgreSQL connection.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	orm, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db}), database.GormConfig(cfg))
	if err != nil {
		db.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to initialise ORM: %w", err)
	}

	return &Connection{pool: pool, db: db, gorm: orm}, nil
}

// Pool returns the underlying pgx pool.
func (c *Connection) Pool() *pgxpool.Pool { return c.pool }

func (c *Connection) DB() *sql.DB              { return c.db }
func (c *Connection) Gorm() *gorm.DB           { return c.gorm }
func (c *Connection) Driver() database.Driver { return database.DriverPostgres }

// Ping verifies the pool can reach the server.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close closes the sql.DB adapter and the pool behind it.
func (c *Connection) Close() error {
	err := c.db.Close()
	c.pool.Close()
	return err
}
