package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/stats"
	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/models"
)

// Request limits
const (
	// MaxCommentLength bounds a single comment sent to /api/match
	MaxCommentLength = 4096

	// MaxSummaryFiles bounds the files in one /api/summarize request
	MaxSummaryFiles = 500

	// MaxSummaryBytes bounds the total text in one /api/summarize request
	MaxSummaryBytes = 32 << 20
)

// SpeciesDTO represents a species in API requests and responses
type SpeciesDTO struct {
	ID          uint     `json:"id,omitempty"`
	Genus       string   `json:"genus"`
	Species     string   `json:"species"`
	CommonNames []string `json:"common_names"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
}

// Validate checks the fields needed to store a species
func (d *SpeciesDTO) Validate() error {
	if strings.TrimSpace(d.Genus) == "" || strings.TrimSpace(d.Species) == "" {
		return fmt.Errorf("genus and species are required")
	}
	if len(d.CommonNames) == 0 {
		return fmt.Errorf("at least one common name is required")
	}
	if len(d.Tags) == 0 {
		return fmt.Errorf("at least one tag is required")
	}
	return nil
}

func (d *SpeciesDTO) toModel() models.Species {
	return models.Species{
		ID:          d.ID,
		Genus:       d.Genus,
		Species:     d.Species,
		CommonNames: d.CommonNames,
		Tags:        d.Tags,
		Notes:       d.Notes,
	}
}

func speciesDTO(sp models.Species) SpeciesDTO {
	return SpeciesDTO{
		ID:          sp.ID,
		Genus:       sp.Genus,
		Species:     sp.Species,
		CommonNames: sp.CommonNames,
		Tags:        sp.Tags,
		Notes:       sp.Notes,
		DisplayName: sp.DisplayName(),
	}
}

// ListSpeciesResponse is the response for GET /api/species
type ListSpeciesResponse struct {
	Species []SpeciesDTO `json:"species"`
	Count   int          `json:"count"`
}

// MatchRequest is the request body for POST /api/match
type MatchRequest struct {
	Comment string `json:"comment"`
}

// Validate checks if the request is valid. An empty comment is allowed and matches nothing.
func (r *MatchRequest) Validate() error {
	if len(r.Comment) > MaxCommentLength {
		return fmt.Errorf("comment too long: %d bytes (maximum: %d)", len(r.Comment), MaxCommentLength)
	}
	return nil
}

// MatchDTO is one tag found in a comment
type MatchDTO struct {
	Tag         string `json:"tag"`
	Offset      int    `json:"offset"`
	SpeciesID   uint   `json:"species_id"`
	DisplayName string `json:"display_name"`
	Binomial    string `json:"binomial"`
}

// MatchResponse is the response for POST /api/match
type MatchResponse struct {
	Matches []MatchDTO `json:"matches"`
	Count   int        `json:"count"`
}

func matchResponse(matches []tagmatch.Match) MatchResponse {
	out := make([]MatchDTO, len(matches))
	for i, m := range matches {
		out[i] = MatchDTO{
			Tag:         m.Tag,
			Offset:      m.Offset,
			SpeciesID:   m.Species.ID,
			DisplayName: m.Species.DisplayName(),
			Binomial:    m.Species.Binomial(),
		}
	}
	return MatchResponse{Matches: out, Count: len(out)}
}

// TextFileDTO is a label file sent inline
type TextFileDTO struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SummarizeRequest is the request body for POST /api/summarize. Files are
// processed in the order given.
type SummarizeRequest struct {
	Files []TextFileDTO `json:"files"`
}

// Validate checks if the request is valid
func (r *SummarizeRequest) Validate() error {
	if len(r.Files) == 0 {
		return fmt.Errorf("files cannot be empty")
	}
	if len(r.Files) > MaxSummaryFiles {
		return fmt.Errorf("too many files: %d (maximum: %d)", len(r.Files), MaxSummaryFiles)
	}
	seen := make(map[string]bool, len(r.Files))
	total := 0
	for _, f := range r.Files {
		name := filepath.Base(f.Name)
		if strings.TrimSpace(f.Name) == "" || name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("every file needs a name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate file name: %s", name)
		}
		seen[name] = true
		total += len(f.Content)
	}
	if total > MaxSummaryBytes {
		return fmt.Errorf("files too large: %d bytes (maximum: %d)", total, MaxSummaryBytes)
	}
	return nil
}

// StatDTO is one species line of a summary
type StatDTO struct {
	Species  string `json:"species"`
	Passes   int    `json:"passes"`
	Segments int    `json:"segments"`
	MinMs    int64  `json:"min_ms"`
	MaxMs    int64  `json:"max_ms"`
	MeanMs   int64  `json:"mean_ms"`
	TotalMs  int64  `json:"total_ms"`
	Summary  string `json:"summary"`
}

func statDTOs(agg *stats.Aggregator) []StatDTO {
	list := agg.Stats()
	out := make([]StatDTO, 0, len(list))
	for _, s := range list {
		out = append(out, StatDTO{
			Species:  s.CommonName,
			Passes:   s.Passes,
			Segments: s.Segments,
			MinMs:    s.Min.Milliseconds(),
			MaxMs:    s.Max.Milliseconds(),
			MeanMs:   s.Mean.Milliseconds(),
			TotalMs:  s.Total.Milliseconds(),
			Summary:  summary.FormatStat(s),
		})
	}
	return out
}

// SummaryResponse is the response for POST /api/summarize and session reports
type SummaryResponse struct {
	Report   []string  `json:"report"`
	Manifest []string  `json:"manifest"`
	Skipped  []string  `json:"skipped,omitempty"`
	Failed   []string  `json:"failed,omitempty"`
	Totals   []StatDTO `json:"totals"`
}

func summaryResponse(b *summary.BatchReport) SummaryResponse {
	failed := make([]string, 0, len(b.Failed))
	for _, f := range b.Failed {
		failed = append(failed, f.Path)
	}
	return SummaryResponse{
		Report:   b.Lines(),
		Manifest: b.Manifest(),
		Skipped:  b.Skipped,
		Failed:   failed,
		Totals:   statDTOs(b.Totals),
	}
}

// SessionDTO represents a session in API requests and responses
type SessionDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date,omitzero"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Validate checks if the request is valid
func (d *SessionDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.Latitude < -90 || d.Latitude > 90 || d.Longitude < -180 || d.Longitude > 180 {
		return fmt.Errorf("position out of range: (%g, %g)", d.Latitude, d.Longitude)
	}
	return nil
}

func (d *SessionDTO) toModel() models.Session {
	return models.Session{
		ID:        d.ID,
		Name:      d.Name,
		Location:  d.Location,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Notes:     d.Notes,
	}
}

func sessionDTO(s models.Session) SessionDTO {
	return SessionDTO{
		ID:        s.ID,
		Name:      s.Name,
		Location:  s.Location,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Notes:     s.Notes,
	}
}

// ListSessionsResponse is the response for GET /api/sessions
type ListSessionsResponse struct {
	Sessions []SessionDTO `json:"sessions"`
	Count    int          `json:"count"`
}

// SegmentDTO is a stored interval of a recording
type SegmentDTO struct {
	StartMs       int64   `json:"start_ms"`
	EndMs         int64   `json:"end_ms"`
	Comment       string  `json:"comment"`
	PeakFrequency float64 `json:"peak_frequency_hz,omitempty"`
}

// RecordingDTO represents a recording in API responses
type RecordingDTO struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	StartTime  time.Time    `json:"start_time,omitzero"`
	DurationMs int          `json:"duration_ms"`
	Segments   []SegmentDTO `json:"segments"`
}

func recordingDTO(r models.Recording) RecordingDTO {
	segs := make([]SegmentDTO, len(r.Segments))
	for i, s := range r.Segments {
		segs[i] = SegmentDTO{StartMs: s.StartMs, EndMs: s.EndMs, Comment: s.Comment, PeakFrequency: s.PeakFrequency}
	}
	return RecordingDTO{
		ID:         r.ID,
		FileName:   r.FileName,
		StartTime:  r.StartTime,
		DurationMs: r.DurationMs,
		Segments:   segs,
	}
}

// SessionDetailResponse is the response for GET /api/sessions/{id}
type SessionDetailResponse struct {
	Session    SessionDTO     `json:"session"`
	Recordings []RecordingDTO `json:"recordings"`
}

// DeleteResponse is the response for DELETE requests
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HealthMetricsResponse provides server health and database counts
type HealthMetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	SpeciesCount int    `json:"species_count"`
	SessionCount int    `json:"session_count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
