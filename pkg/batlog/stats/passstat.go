// Package stats classifies labelled interval durations into passes and
// aggregates per-species pass statistics across segments, files and sessions.
package stats

import (
	"fmt"
	"math"
	"time"
)

const (
	// SinglePassLimit is the longest interval that still counts as exactly one pass.
	SinglePassLimit = 7500 * time.Millisecond
	// PassLength is the nominal length of one pass inside a longer interval.
	PassLength = 5 * time.Second
)

// PassStat is the running aggregate for one species.
type PassStat struct {
	CommonName string
	Count      int
	Segments   int
	Passes     int
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
	Total      time.Duration
}

// New returns an empty aggregate whose Min/Max sentinels lose to any real value.
func New(commonName string) *PassStat {
	return &PassStat{
		CommonName: commonName,
		Min:        time.Duration(math.MaxInt64),
		Max:        time.Duration(math.MinInt64),
	}
}

// NewWithDuration returns an aggregate seeded with one interval.
func NewWithDuration(commonName string, d time.Duration) *PassStat {
	s := New(commonName)
	s.AddDuration(d)
	return s
}

// PassCount returns the number of passes an interval of length d represents.
// Long intervals are rounded half-to-even.
func PassCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	if d <= SinglePassLimit {
		return 1
	}
	return int(math.RoundToEven(d.Seconds() / PassLength.Seconds()))
}

// AddDuration folds one observed interval into the aggregate.
// Zero and negative durations are ignored.
func (s *PassStat) AddDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	s.Passes += PassCount(d)
	s.Count++
	s.Segments++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Mean = s.Total / time.Duration(s.Count)
}

// Add merges other into s. When both carry non-empty, different common names
// the call is a no-op so one species never contaminates another.
func (s *PassStat) Add(other *PassStat) {
	if other == nil {
		return
	}
	if other.CommonName != "" {
		if s.CommonName == "" {
			s.CommonName = other.CommonName
		} else if s.CommonName != other.CommonName {
			return
		}
	}
	if other.Count <= 0 {
		return
	}
	if other.Min < s.Min {
		s.Min = other.Min
	}
	if other.Max > s.Max {
		s.Max = other.Max
	}
	s.Count += other.Count
	s.Segments += other.Segments
	s.Passes += other.Passes
	s.Total += other.Total
	s.Mean = s.Total / time.Duration(s.Count)
}

// IsEmpty reports whether no interval has been accepted.
func (s *PassStat) IsEmpty() bool {
	return s == nil || s.Count == 0
}

// Clone returns an independent copy.
func (s *PassStat) Clone() *PassStat {
	c := *s
	return &c
}

func (s *PassStat) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("%s: no passes", s.CommonName)
	}
	return fmt.Sprintf("%s: passes=%d segments=%d min=%s max=%s mean=%s total=%s",
		s.CommonName, s.Passes, s.Segments, s.Min, s.Max, s.Mean, s.Total)
}
