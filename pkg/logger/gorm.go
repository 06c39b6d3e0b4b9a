package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm output through slog. Record-not-found errors are
// expected by the services (they become 404s) and are not logged as SQL errors.
type GormLogger struct {
	LogLevel             logger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

func NewGormLogger(logLevel logger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:             logLevel,
		SlowThreshold:        slowThreshold,
		IgnoreRecordNotFound: true,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		Log.InfoContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		Log.WarnContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		Log.ErrorContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gorm.ErrRecordNotFound)

	switch {
	case err != nil && l.LogLevel >= logger.Error && !(notFound && l.IgnoreRecordNotFound):
		sql, rows := fc()
		Log.LogAttrs(ctx, slog.LevelError, "SQL error", sqlAttrs(sql, rows, elapsed, slog.String("error", err.Error()))...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		sql, rows := fc()
		Log.LogAttrs(ctx, slog.LevelWarn, "Slow SQL", sqlAttrs(sql, rows, elapsed, slog.Duration("threshold", l.SlowThreshold))...)
	case l.LogLevel >= logger.Info:
		sql, rows := fc()
		Log.LogAttrs(ctx, slog.LevelDebug, "SQL", sqlAttrs(sql, rows, elapsed)...)
	}
}

func sqlAttrs(sql string, rows int64, elapsed time.Duration, extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	return append(attrs, extra...)
}
