package batlog

import (
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
)

type Config struct {
	DBPath              string
	Workers             int
	LegacyPositionCheck bool
	MatcherTTL          time.Duration
	MinPeakHz           float64
	GPSMaxGap           time.Duration
	Logger              Logger
	Storage             Storage
	GPS                 gps.Provider
	Observer            summary.Observer
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithGPS(p gps.Provider) Option {
	return func(c *Config) {
		c.GPS = p
	}
}

func WithObserver(o summary.Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithWorkers bounds concurrent file reads during summaries. 0 uses one per CPU.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithLegacyPositionCheck ignores tags found at the very start of a comment,
// as older releases did.
func WithLegacyPositionCheck(on bool) Option {
	return func(c *Config) {
		c.LegacyPositionCheck = on
	}
}

// WithMatcherTTL sets how long a matcher built from the reference data is
// reused before the database is read again.
func WithMatcherTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.MatcherTTL = ttl
	}
}

// WithMinPeakHz sets the lowest frequency considered when measuring segment peaks.
func WithMinPeakHz(hz float64) Option {
	return func(c *Config) {
		c.MinPeakHz = hz
	}
}

// WithGPSMaxGap sets how far outside a session's dates a recording may start
// and still be placed at the session position in reports.
func WithGPSMaxGap(d time.Duration) Option {
	return func(c *Config) {
		c.GPSMaxGap = d
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     "batlog.sqlite3",
		MatcherTTL: 5 * time.Minute,
		MinPeakHz:  15000,
		GPSMaxGap:  10 * time.Minute,
		GPS:        gps.None{},
	}
}
