package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/JonnyWalker81/focusmetrics/internal/logger"
)

// SlowQueryThreshold marks statements logged at warn level regardless of outcome
const SlowQueryThreshold = time.Second

// gormLog routes gorm's logging through the application logger so SQL entries
// carry the same request and user fields as the rest of the request.
type gormLog struct {
	log   logger.Logger
	level gormLogger.LogLevel
}

func newGormLog(log logger.Logger) *gormLog {
	if log == nil {
		log = logger.Default()
	}
	level := gormLogger.Warn
	if log.Level() == logger.LevelDebug {
		level = gormLogger.Info
	}
	return &gormLog{log: log.With(logger.String("component", "sql")), level: level}
}

func (g *gormLog) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLog) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormLogger.Info {
		g.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLog) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormLogger.Warn {
		g.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLog) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormLogger.Error {
		g.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	entry := func() logger.Logger {
		sql, rows := fc()
		return g.log.WithContext(ctx).With(
			logger.String("sql", sql),
			logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed),
		)
	}

	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		// Surfaced to the caller as a conflict, not a store failure
		if g.level >= gormLogger.Warn {
			entry().Warn("duplicate key", logger.Err(err))
		}
	case err != nil:
		if g.level >= gormLogger.Error {
			entry().Error("query failed", logger.Err(err))
		}
	case elapsed > SlowQueryThreshold:
		if g.level >= gormLogger.Warn {
			entry().Warn("slow query", logger.Duration("threshold", SlowQueryThreshold))
		}
	case g.level >= gormLogger.Info:
		entry().Debug("query")
	}
}

// ParamsFilter keeps bound values (user IDs, scores) out of logged SQL
func (g *gormLog) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}
