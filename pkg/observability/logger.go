// Package observability provides structured logging, command tracing and
// health checks for stockroom.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogFormat specifies the output format for logs.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogConfig configures the logger.
type LogConfig struct {
	Level  slog.Level
	Format LogFormat
	// Output defaults to os.Stderr; stdout belongs to command output.
	Output    io.Writer
	AddSource bool
	// Service and Version are attached to every record when set.
	Service string
	Version string
}

// ConfigFor derives a LogConfig from the application environment and the
// configured level and format. Production logs JSON at info with source
// locations; everything else logs text at warn so command output stays
// readable. An empty or unknown level keeps the environment default.
func ConfigFor(appEnv, level, format string) LogConfig {
	cfg := LogConfig{
		Level:   slog.LevelWarn,
		Format:  LogFormatText,
		Output:  os.Stderr,
		Service: "stockroom",
	}
	if appEnv == "production" {
		cfg.Level = slog.LevelInfo
		cfg.Format = LogFormatJSON
		cfg.AddSource = true
	}

	if level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err == nil {
			cfg.Level = l
		}
	}
	if format != "" {
		cfg.Format = LogFormat(strings.ToLower(format))
	}
	return cfg
}

// NewLogger creates a structured logger that also records the command
// context carried by ctx.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	return slog.New(&contextHandler{next: handler, attrs: attrs})
}

// contextHandler adds the service attributes and the command context
// (correlation ID, user, operation) to every record.
type contextHandler struct {
	next  slog.Handler
	attrs []slog.Attr
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	if id := CorrelationIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(CorrelationIDKey, id))
	}
	if user := UserFromContext(ctx); user != "" {
		r.AddAttrs(slog.String(UserKey, user))
	}
	if op := OperationFromContext(ctx); op != "" {
		r.AddAttrs(slog.String(OperationKey, op))
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), attrs: h.attrs}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), attrs: h.attrs}
}

// LogDuration logs at info how long the command in ctx took.
func LogDuration(ctx context.Context, logger *slog.Logger, operation string, start time.Time) {
	logger.InfoContext(ctx, "command end",
		"command", operation,
		DurationKey, time.Since(start).Milliseconds(),
	)
}
