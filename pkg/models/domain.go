package models

import (
	"strings"
	"time"
)

// Species is a bat species from the reference database.
// CommonNames and Tags are ordered; the first common name is the preferred display name.
type Species struct {
	ID          uint     // Database ID
	Genus       string   // e.g. "Pipistrellus"
	Species     string   // Species epithet, e.g. "pygmaeus"
	CommonNames []string // Preferred name first
	Tags        []string // Text fragments identifying this species in comments
	Notes       string
}

// DisplayName returns the preferred common name, falling back to the binomial.
func (s Species) DisplayName() string {
	for _, n := range s.CommonNames {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return s.Binomial()
}

// Binomial returns "Genus species".
func (s Species) Binomial() string {
	return strings.TrimSpace(s.Genus + " " + s.Species)
}

// Session is a dated, located recording outing.
type Session struct {
	ID        string    // UUID
	Name      string    // Short tag, e.g. "Riverside 2024-06"
	Location  string    // Free-text place name
	StartDate time.Time // Local date/time the outing started
	EndDate   time.Time
	Latitude  float64
	Longitude float64
	Notes     string
}

// Recording is one audio capture plus its labelled segments.
type Recording struct {
	ID         string // UUID
	SessionID  string
	FileName   string    // Base name of the audio or label file
	StartTime  time.Time // Zero when unknown
	DurationMs int
	Notes      string
	Segments   []Segment
}

// Segment is a single labelled interval stored against a recording.
type Segment struct {
	ID            uint
	StartMs       int64
	EndMs         int64
	Comment       string
	PeakFrequency float64 // Hz, 0 when no audio was available
}

// Duration returns the segment length; negative spans are returned as-is.
func (s Segment) Duration() time.Duration {
	return time.Duration(s.EndMs-s.StartMs) * time.Millisecond
}
