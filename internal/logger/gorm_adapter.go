package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter sends GORM logs to zap.
type GormAdapter struct {
	level         gormlogger.LogLevel
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewGormAdapter returns a GORM logger writing to l at the given level.
func NewGormAdapter(l *zap.Logger, level gormlogger.LogLevel) *GormAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &GormAdapter{level: level, logger: l, slowThreshold: 200 * time.Millisecond}
}

func (a *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormAdapter{level: level, logger: a.logger, slowThreshold: a.slowThreshold}
}

func (a *GormAdapter) Info(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Info {
		a.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (a *GormAdapter) Warn(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Warn {
		a.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (a *GormAdapter) Error(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Error {
		a.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (a *GormAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && a.level >= gormlogger.Error:
		// not-found lookups are answered as 404s, not database failures
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			a.logger.Debug("record not found", fields...)
			return
		}
		a.logger.Error("database operation failed", append(fields, zap.Error(err))...)
	case elapsed > a.slowThreshold && a.level >= gormlogger.Warn:
		a.logger.Warn("slow query", fields...)
	case a.level >= gormlogger.Info:
		a.logger.Debug("query executed", fields...)
	}
}
