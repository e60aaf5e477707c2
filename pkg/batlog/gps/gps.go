// Package gps supplies optional positions for recording timestamps.
package gps

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Fix is a position at a point in time.
type Fix struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
}

func (f Fix) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", f.Latitude, f.Longitude)
}

// Provider returns the position for a timestamp. ok is false when there is no data.
type Provider interface {
	Locate(t time.Time) (fix Fix, ok bool)
}

// None is a Provider without data.
type None struct{}

func (None) Locate(time.Time) (Fix, bool) { return Fix{}, false }

// Track is an in-memory provider over recorded fixes. The nearest fix wins
// provided it lies within MaxGap of the query; a zero MaxGap accepts any distance.
type Track struct {
	points []Fix
	maxGap time.Duration
}

func NewTrack(points []Fix, maxGap time.Duration) *Track {
	sorted := make([]Fix, 0, len(points))
	for _, p := range points {
		if !p.Time.IsZero() {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return &Track{points: sorted, maxGap: maxGap}
}

type trackFile struct {
	Fixes []struct {
		Time time.Time `yaml:"time"`
		Lat  float64   `yaml:"lat"`
		Lon  float64   `yaml:"lon"`
	} `yaml:"fixes"`
}

// LoadTrack reads a YAML fix list:
//
//	fixes:
//	  - {time: 2024-06-12T21:00:00+01:00, lat: 51.0, lon: -1.0}
func LoadTrack(r io.Reader, maxGap time.Duration) (*Track, error) {
	var tf trackFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding track: %w", err)
	}
	points := make([]Fix, 0, len(tf.Fixes))
	for i, f := range tf.Fixes {
		if f.Lat < -90 || f.Lat > 90 || f.Lon < -180 || f.Lon > 180 {
			return nil, fmt.Errorf("fix %d: position (%g, %g) out of range", i, f.Lat, f.Lon)
		}
		points = append(points, Fix{Time: f.Time, Latitude: f.Lat, Longitude: f.Lon})
	}
	return NewTrack(points, maxGap), nil
}

func LoadTrackFile(path string, maxGap time.Duration) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track: %w", err)
	}
	defer f.Close()
	return LoadTrack(f, maxGap)
}

// Len returns the number of usable fixes.
func (t *Track) Len() int {
	return len(t.points)
}

func (t *Track) Locate(at time.Time) (Fix, bool) {
	if t == nil || len(t.points) == 0 || at.IsZero() {
		return Fix{}, false
	}
	i := sort.Search(len(t.points), func(i int) bool {
		return !t.points[i].Time.Before(at)
	})

	best := -1
	var bestGap time.Duration
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(t.points) {
			continue
		}
		gap := absDuration(t.points[j].Time.Sub(at))
		if best < 0 || gap < bestGap {
			best, bestGap = j, gap
		}
	}
	if best < 0 || (t.maxGap > 0 && bestGap > t.maxGap) {
		return Fix{}, false
	}
	return t.points[best], true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Static reports one position for any time between From and To, widened by
// Slack on both sides. A zero To means the window ends at From.
type Static struct {
	Fix   Fix
	From  time.Time
	To    time.Time
	Slack time.Duration
}

func (s Static) Locate(at time.Time) (Fix, bool) {
	if at.IsZero() || s.From.IsZero() {
		return Fix{}, false
	}
	to := s.To
	if to.IsZero() || to.Before(s.From) {
		to = s.From
	}
	if at.Before(s.From.Add(-s.Slack)) || at.After(to.Add(s.Slack)) {
		return Fix{}, false
	}
	fix := s.Fix
	fix.Time = at
	return fix, true
}

// Chain asks each provider in turn and returns the first fix found.
type Chain []Provider

func (c Chain) Locate(at time.Time) (Fix, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if fix, ok := p.Locate(at); ok {
			return fix, true
		}
	}
	return Fix{}, false
}
