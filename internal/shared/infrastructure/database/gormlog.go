package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes ORM logs to slog. Statements are logged at debug level,
// slow statements as warnings and failed statements as debug entries too:
// the repositories log failures with entity context themselves.
type GormLogger struct {
	logger    *slog.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

// NewGormLogger creates a GormLogger. A nil logger discards everything.
func NewGormLogger(logger *slog.Logger, slowQuery time.Duration) *GormLogger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if slowQuery <= 0 {
		slowQuery = 200 * time.Millisecond
	}
	return &GormLogger{
		logger:    logger.With("component", "gorm"),
		level:     gormlogger.Warn,
		slowQuery: slowQuery,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.DebugContext(ctx, "statement failed",
			"sql", sql, "rows", rows, "duration", elapsed, "error", err)
	case elapsed > l.slowQuery:
		sql, rows := fc()
		l.logger.WarnContext(ctx, "slow statement",
			"sql", sql, "rows", rows, "duration", elapsed, "threshold", l.slowQuery)
	case l.logger.Enabled(ctx, slog.LevelDebug):
		sql, rows := fc()
		l.logger.DebugContext(ctx, "statement", "sql", sql, "rows", rows, "duration", elapsed)
	}
}
