package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates text logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatText, Output: &buf})
		require.NotNil(t, logger)

		logger.Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("creates JSON logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatJSON, Output: &buf})

		logger.Info("test message", "key", "value")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "test message", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelWarn, Format: LogFormatText, Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("adds service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          slog.LevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			Service:        "stockroom",
			Version:        "1.0.0",
		})

		logger.Info("test")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "stockroom", entry["service"])
		assert.Equal(t, "1.0.0", entry["version"])
	})

	t.Run("adds command context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatJSON, Output: &buf})

		ctx := WithCorrelationID(context.Background(), "corr-123")
		ctx = WithUser(ctx, "alice")
		ctx = WithOperation(ctx, "article add")
		logger.InfoContext(ctx, "saved")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-123", entry[CorrelationIDKey])
		assert.Equal(t, "alice", entry[UserKey])
		assert.Equal(t, "article add", entry[OperationKey])
	})
}

func TestConfigFor(t *testing.T) {
	t.Run("development defaults", func(t *testing.T) {
		cfg := ConfigFor("development", "", "")
		assert.Equal(t, slog.LevelWarn, cfg.Level)
		assert.Equal(t, LogFormatText, cfg.Format)
		assert.Equal(t, "stockroom", cfg.Service)
	})

	t.Run("production defaults", func(t *testing.T) {
		cfg := ConfigFor("production", "", "")
		assert.Equal(t, slog.LevelInfo, cfg.Level)
		assert.Equal(t, LogFormatJSON, cfg.Format)
		assert.True(t, cfg.AddSource)
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg := ConfigFor("production", "debug", "text")
		assert.Equal(t, slog.LevelDebug, cfg.Level)
		assert.Equal(t, LogFormatText, cfg.Format)
	})
}

func TestConfigFor_LevelNames(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConfigFor("development", tt.input, "").Level)
		})
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := &contextHandler{next: base}

	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
}

func TestContextHandler_WithAttrsKeepsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatJSON, Output: &buf, Service: "stockroom"})

	logger.With("entity_type", "Article").Info("entity added")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Article", entry["entity_type"])
	assert.Equal(t, "stockroom", entry["service"])
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogDuration(context.Background(), logger, "stockroom migrate", time.Now().Add(-100*time.Millisecond))

	assert.Contains(t, buf.String(), "command end")
	assert.Contains(t, buf.String(), `command="stockroom migrate"`)
	assert.Contains(t, buf.String(), "duration_ms")
}

func TestNewCommandContext(t *testing.T) {
	ctx := NewCommandContext(context.Background(), "type list")

	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Equal(t, "type list", OperationFromContext(ctx))
	assert.Empty(t, UserFromContext(ctx))
}

func TestHealthRegistry(t *testing.T) {
	reg := NewHealthRegistry()
	reg.Register("redis", PingChecker("redis", HealthStatusDegraded, func(context.Context) error {
		return errors.New("connection refused")
	}))
	reg.Register("database", PingChecker("database", HealthStatusUnhealthy, func(context.Context) error {
		return nil
	}))

	results := reg.Check(context.Background())
	require.Len(t, results, 2)

	assert.Equal(t, "database", results[0].Name)
	assert.Equal(t, HealthStatusHealthy, results[0].Status)
	assert.Equal(t, "redis", results[1].Name)
	assert.Equal(t, HealthStatusDegraded, results[1].Status)
	assert.Contains(t, results[1].Message, "connection refused")

	assert.Equal(t, HealthStatusDegraded, OverallStatus(results))
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, HealthStatusHealthy, OverallStatus(nil))
	assert.Equal(t, HealthStatusUnhealthy, OverallStatus([]HealthCheckResult{
		{Status: HealthStatusDegraded},
		{Status: HealthStatusUnhealthy},
	}))
}
