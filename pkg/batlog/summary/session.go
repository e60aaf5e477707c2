package summary

import (
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/batlog/stats"
	"github.com/himanishpuri/BatLog/pkg/models"
)

// SummarizeRecording runs a stored recording's segments through the matcher.
func (s *Summarizer) SummarizeRecording(rec models.Recording) *FileReport {
	r := &FileReport{
		Path: rec.FileName,
		Meta: s.locate(Meta{
			Path:      rec.FileName,
			StartTime: rec.StartTime,
			Duration:  time.Duration(rec.DurationMs) * time.Millisecond,
		}),
		Mode:  ModeProcess,
		Stats: stats.NewAggregator(),
	}
	for _, seg := range rec.Segments {
		s.addInterval(r, labels.Interval{
			Start:   time.Duration(seg.StartMs) * time.Millisecond,
			End:     time.Duration(seg.EndMs) * time.Millisecond,
			Comment: seg.Comment,
		}, "segment")
	}
	s.obs.FileSummarized(r.Mode, len(rec.Segments))
	return r
}

// SummarizeSession rolls every recording of a session up into one report.
func (s *Summarizer) SummarizeSession(session models.Session, recordings []models.Recording) *BatchReport {
	results := make([]*FileReport, 0, len(recordings))
	for _, rec := range recordings {
		results = append(results, s.SummarizeRecording(rec))
	}
	b := s.reduce(results)
	b.Title = sessionTitle(session)
	return b
}

func sessionTitle(session models.Session) []string {
	title := []string{session.Name}
	if session.Location != "" {
		title[0] += ", " + session.Location
	}
	if !session.StartDate.IsZero() {
		title = append(title, "Started "+session.StartDate.Format(timeLayout))
	}
	if session.Latitude != 0 || session.Longitude != 0 {
		title = append(title, "Position "+positionString(session.Latitude, session.Longitude))
	}
	return title
}
