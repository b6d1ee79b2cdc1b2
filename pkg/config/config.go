package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database
	DatabaseDriver   string
	DatabaseURL      string
	SQLitePath       string
	DatabaseMaxConns int
	AutoMigrate      bool

	// Redis backs login throttling when set.
	RedisURL string

	// RabbitMQ receives change events when set.
	RabbitMQURL string

	// Authentication
	LoginMaxAttempts int
	LoginLockout     time.Duration
	BcryptCost       int

	// Store circuit breaker
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// Notifications
	NotifyDuration time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogFormat: getEnv("LOG_FORMAT", ""),

		DatabaseDriver:   getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", ""),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),
		AutoMigrate:      getBoolEnv("AUTO_MIGRATE", true),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		LoginMaxAttempts: getIntEnv("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:     getDurationEnv("LOGIN_LOCKOUT", 15*time.Minute),
		BcryptCost:       getIntEnv("BCRYPT_COST", 12),

		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		NotifyDuration: getDurationEnv("NOTIFY_DURATION", 3*time.Second),
	}

	if cfg.DatabaseDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.DatabaseDriver = "postgres"
		} else {
			cfg.DatabaseDriver = "sqlite"
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesSQLite reports whether the local SQLite store is selected.
func (c *Config) UsesSQLite() bool {
	return c.DatabaseDriver == "sqlite"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
