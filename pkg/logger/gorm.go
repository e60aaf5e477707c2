package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes gorm's logging through a Logger. SQL statements go to
// DEBUG; failed and slow statements go to WARN. Missing records are not errors.
type GormAdapter struct {
	log           *Logger
	slowThreshold time.Duration
}

func NewGormAdapter(log *Logger, slowThreshold time.Duration) *GormAdapter {
	if log == nil {
		log = Discard()
	}
	return &GormAdapter{log: log, slowThreshold: slowThreshold}
}

// LogMode is a no-op; verbosity follows the Logger's level.
func (a *GormAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return a
}

func (a *GormAdapter) Info(_ context.Context, msg string, data ...any) {
	a.log.Debugf(msg, data...)
}

func (a *GormAdapter) Warn(_ context.Context, msg string, data ...any) {
	a.log.Warnf(msg, data...)
}

func (a *GormAdapter) Error(_ context.Context, msg string, data ...any) {
	a.log.Errorf(msg, data...)
}

func (a *GormAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.log.Warnf("query error: %v [%s] rows=%d %s", err, sql, rows, elapsed)
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.log.Warnf("slow query (%s > %s): %s", elapsed, a.slowThreshold, sql)
	default:
		a.log.Debugf("sql %s rows=%d %s", sql, rows, elapsed)
	}
}
