package db

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// queryLogger adapts gorm's logger.Interface onto the process-wide zap
// logger. Slow queries surface as warnings with their own message so they
// can be alerted on separately from failures.
type queryLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
	traceAll      bool
}

func newQueryLogger(level logger.LogLevel, traceAll bool) *queryLogger {
	return &queryLogger{
		level:         level,
		slowThreshold: 200 * time.Millisecond,
		traceAll:      traceAll,
	}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		zap.L().Sugar().Infof(msg, args...)
	}
}

func (l *queryLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		zap.L().Sugar().Warnf(msg, args...)
	}
}

func (l *queryLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		zap.L().Sugar().Errorf(msg, args...)
	}
}

func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("caller", utils.FileWithLineNum()),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		zap.L().Error("query failed", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		zap.L().Warn("slow query", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	case l.traceAll && l.level >= logger.Info:
		zap.L().Info("query", fields...)
	}
}
