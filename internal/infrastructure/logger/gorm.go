package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold used when none is configured
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger adapts zap to gorm. Statements carry the request, user and
// trace ids found in the context so a slow query can be tied to its request.
// Record-not-found is never logged: repositories turn it into a domain error.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger creates a gorm logger. A non-positive slow threshold uses
// DefaultSlowQuery.
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &GormLogger{log: log.Named("gorm"), level: level, slow: slow}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) message(ctx context.Context, at gormlogger.LogLevel, msg string, data []any) {
	if l.level < at {
		return
	}
	text := fmt.Sprintf(msg, data...)
	fields := requestFields(ctx)
	switch at {
	case gormlogger.Error:
		l.log.Error(text, fields...)
	case gormlogger.Warn:
		l.log.Warn(text, fields...)
	default:
		l.log.Info(text, fields...)
	}
}

// Trace logs one statement: failures at error, statements over the slow
// threshold at warn, the rest at debug when the level is Info
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && l.level >= gormlogger.Error
	slow := elapsed >= l.slow && l.level >= gormlogger.Warn
	if !failed && !slow && l.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	fields := append(requestFields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch {
	case failed:
		l.log.Error("Query failed", append(fields, zap.Error(err))...)
	case slow:
		l.log.Warn("Slow query", append(fields, zap.Duration("threshold", l.slow))...)
	default:
		l.log.Debug("Query", fields...)
	}
}

func requestFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

// MapGormLogLevel maps a log level name to gorm's. debug and info both log
// every statement.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
