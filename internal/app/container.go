// Package app wires the stockroom dependencies together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	"github.com/stockroom-app/stockroom/internal/identity/infrastructure/throttle"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	"github.com/stockroom-app/stockroom/internal/presentation/viewmodels"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
	_ "github.com/stockroom-app/stockroom/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/stockroom-app/stockroom/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
	"github.com/stockroom-app/stockroom/pkg/config"
	"github.com/stockroom-app/stockroom/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis backs the login limiter when configured.
	RedisClient *redis.Client

	// Events
	EventBus       *eventbus.InProcessEventBus
	EventPublisher eventbus.Publisher
	rabbit         *eventbus.RabbitMQPublisher

	// Persistence
	Persistence  *sharedPersistence.Context
	Repositories *viewmodels.Repositories

	// Auth
	Limiter     auth.Limiter
	AuthService *auth.Service

	// Presentation
	Notifications *mvvm.MessageQueue
	Login         *viewmodels.LoginViewModel
	Users         *viewmodels.UserViewModel
	Articles      *viewmodels.ArticleViewModel
	Catalog       *viewmodels.CatalogViewModel

	Health *observability.HealthRegistry
}

// NewContainer creates and wires all dependencies. Redis and RabbitMQ are
// optional: in development an unreachable service is logged and skipped,
// elsewhere it fails construction.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		applied, err := c.Migrate(ctx)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Debug("migrations run", "count", len(applied))
	}

	if err := c.initEvents(cfg); err != nil {
		c.Close()
		return nil, err
	}

	c.Persistence = sharedPersistence.NewContext(c.DBConn.Gorm(), sharedPersistence.Config{
		Publisher: c.EventPublisher,
		Breaker: sharedPersistence.BreakerConfig{
			FailureThreshold: uint32(max(cfg.BreakerFailureThreshold, 1)),
			Timeout:          cfg.BreakerTimeout,
			MaxRequests:      1,
		},
	}, logger)
	c.Repositories = viewmodels.NewRepositories(c.Persistence, cfg.BcryptCost, logger)

	if err := c.initLimiter(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	c.AuthService = auth.NewService(c.Repositories.Users, c.Limiter, cfg.BcryptCost, logger)

	c.Notifications = mvvm.NewMessageQueue(cfg.NotifyDuration)
	c.Login = viewmodels.NewLoginViewModel(c.AuthService, c.Notifications, logger)
	c.Users = viewmodels.NewUserViewModel(c.AuthService, c.Repositories, c.Notifications, logger)
	c.Articles = viewmodels.NewArticleViewModel(c.Repositories, c.Notifications, logger)
	c.Catalog = viewmodels.NewCatalogViewModel(c.Repositories, c.Notifications, logger)

	c.EventBus.RegisterConsumer(c.Articles.Consumer())
	c.EventBus.RegisterConsumer(c.Catalog.Consumer())

	c.registerHealthChecks()

	return c, nil
}

func (c *Container) connect(ctx context.Context) error {
	cfg := c.Config

	driver, err := database.ParseDriver(cfg.DatabaseDriver)
	if err != nil {
		return err
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
		Logger:     c.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

// initEvents always creates the in-process bus that refreshes the
// view-models. A reachable broker receives the same events.
func (c *Container) initEvents(cfg *config.Config) error {
	c.EventBus = eventbus.NewInProcessEventBus(c.Logger)
	c.EventPublisher = c.EventBus

	if cfg.RabbitMQURL == "" {
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, change events stay local", "error", err)
		return nil
	}

	c.rabbit = publisher
	c.EventPublisher = eventbus.NewFanoutPublisher(c.Logger, c.EventBus, publisher)
	return nil
}

func (c *Container) initLimiter(ctx context.Context, cfg *config.Config) error {
	policy := throttle.Policy{MaxAttempts: cfg.LoginMaxAttempts, Lockout: cfg.LoginLockout}

	if cfg.RedisURL != "" {
		client, err := throttle.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			c.RedisClient = client
			c.Limiter = throttle.NewRedisLimiter(client, policy)
			c.Logger.Info("connected to Redis")
			return nil
		}
		if !cfg.IsDevelopment() {
			return err
		}
		c.Logger.Warn("Redis not available, login throttling is per process", "error", err)
	}

	c.Limiter = throttle.NewMemoryLimiter(policy)
	return nil
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.PingChecker(
		string(c.DBDriver), observability.HealthStatusUnhealthy, c.DBConn.Ping))

	c.Health.Register("store_breaker", func(context.Context) observability.HealthCheckResult {
		switch state := c.Persistence.BreakerState(); state {
		case "closed":
			return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Message: "circuit closed"}
		case "half-open":
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "circuit half-open"}
		default:
			return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: "circuit " + state}
		}
	})

	if c.RedisClient != nil {
		c.Health.Register("redis", observability.PingChecker(
			"redis", observability.HealthStatusDegraded,
			func(ctx context.Context) error { return c.RedisClient.Ping(ctx).Err() }))
	}
	if c.rabbit != nil {
		c.Health.Register("rabbitmq", observability.PingChecker(
			"rabbitmq", observability.HealthStatusDegraded, c.rabbit.Ping))
	}
}

// Migrate runs the idempotent schema migrations of the configured driver.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	return migrations.Run(ctx, c.DBConn.DB(), c.DBDriver)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		// the fanout also closes the bus and the broker publisher
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
