// Package summary turns label files into per-species pass reports.
package summary

import (
	"context"
	"runtime"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/logger"
)

const (
	FileSeparator  = "***"
	TotalSeparator = "#########"
)

// Logger is the subset of pkg/logger the summarizer writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Observer receives processing events, typically for metrics.
type Observer interface {
	FileSummarized(mode Mode, lines int)
	FileFailed(path string, err error)
	IntervalParsed(kind string, d time.Duration)
	SpeciesMatched(name string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) FileSummarized(Mode, int) {}
func (nopObserver) FileFailed(string, error) {}
func (nopObserver) IntervalParsed(string, time.Duration) {}
func (nopObserver) SpeciesMatched(string, time.Duration) {}

// Meta is what is known about a label file beyond its lines.
type Meta struct {
	Path      string
	AudioPath string        // paired recording, "" when missing
	StartTime time.Time     // zero when unknown
	Duration  time.Duration // zero without a paired recording
	Fix       *gps.Fix
}

// FileSource supplies the lines and pair metadata of a label file.
type FileSource interface {
	Lines(ctx context.Context, path string) ([]string, error)
	Meta(ctx context.Context, path string) Meta
}

type Summarizer struct {
	matcher *tagmatch.Matcher
	source  FileSource
	gps     gps.Provider
	log     Logger
	obs     Observer
	workers int
}

type Option func(*Summarizer)

func WithSource(src FileSource) Option {
	return func(s *Summarizer) {
		if src != nil {
			s.source = src
		}
	}
}

func WithGPS(p gps.Provider) Option {
	return func(s *Summarizer) {
		if p != nil {
			s.gps = p
		}
	}
}

func WithLogger(l Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Summarizer) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithWorkers bounds how many files are read and parsed at once.
func WithWorkers(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New builds a Summarizer around a matcher snapshot. A nil matcher matches nothing.
func New(m *tagmatch.Matcher, opts ...Option) *Summarizer {
	if m == nil {
		m = tagmatch.New(nil)
	}
	s := &Summarizer{
		matcher: m,
		gps:     gps.None{},
		log:     logger.GetLogger().Module("summary"),
		obs:     nopObserver{},
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = DiskSource{}
	}
	return s
}

// locate attaches a position to meta when the start time is known.
func (s *Summarizer) locate(meta Meta) Meta {
	if meta.Fix != nil || meta.StartTime.IsZero() {
		return meta
	}
	if fix, ok := s.gps.Locate(meta.StartTime); ok {
		meta.Fix = &fix
	}
	return meta
}
