package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf
	cfg.Colorize = false
	cfg.ShowTime = false
	cfg.Level = level
	return New(cfg), &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newTestLogger(WARN)

	log.Debugf("hidden %d", 1)
	log.Infof("hidden too")
	log.Warnf("shown %s", "warn")
	log.Errorf("shown %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown warn")
	assert.Contains(t, out, "[ERROR] shown error")
}

func TestModuleSharesSink(t *testing.T) {
	log, buf := newTestLogger(DEBUG)
	child := log.Module("storage").Module("sqlite")

	child.Infof("opened %s", "db")
	log.SetLevel(ERROR)
	child.Infof("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[INFO] (storage.sqlite) opened db"}, lines)
}

func TestFatalExits(t *testing.T) {
	log, _ := newTestLogger(DEBUG)
	code := -1
	log.sink.exit = func(c int) { code = c }

	log.Fatalf("boom")

	assert.Equal(t, 1, code)
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, WARN, lvl)

	lvl, ok = ParseLevel("chatty")
	assert.False(t, ok)
	assert.Equal(t, INFO, lvl)
}

func TestMessageWithoutArgsIsLiteral(t *testing.T) {
	log, buf := newTestLogger(DEBUG)
	log.Info("100% done", []any{}...)
	assert.Contains(t, buf.String(), "100% done")
}

func TestGormAdapter(t *testing.T) {
	log, buf := newTestLogger(WARN)
	a := NewGormAdapter(log, 10*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	a.Trace(ctx, time.Now(), sql, nil)
	assert.Empty(t, buf.String())

	a.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	a.Trace(ctx, time.Now(), sql, errors.New("disk I/O error"))
	assert.Contains(t, buf.String(), "query error: disk I/O error")

	buf.Reset()
	a.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow query")
}
