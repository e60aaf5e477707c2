package summary

import (
	"fmt"

	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/batlog/stats"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatStat renders one species summary line:
//
//	Soprano Pipistrelle 2 passes in 2 segments = (Min=0.500", Max=2.000", Mean=1.250") Total duration=2.500"
func FormatStat(s *stats.PassStat) string {
	if s.IsEmpty() {
		return fmt.Sprintf("%s 0 passes in 0 segments", s.CommonName)
	}
	return fmt.Sprintf("%s %d %s in %d %s = (Min=%s, Max=%s, Mean=%s) Total duration=%s",
		s.CommonName,
		s.Passes, plural(s.Passes, "pass", "passes"),
		s.Segments, plural(s.Segments, "segment", "segments"),
		labels.FormatDuration(s.Min),
		labels.FormatDuration(s.Max),
		labels.FormatDuration(s.Mean),
		labels.FormatDuration(s.Total),
	)
}

// StatLines formats every species in agg, in insertion order.
func StatLines(agg *stats.Aggregator) []string {
	list := agg.Stats()
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, FormatStat(s))
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Header returns the lines naming a file: its path, then the recording start
// and position when known.
func (r *FileReport) Header() []string {
	out := []string{r.Path}
	if r.Meta.StartTime.IsZero() {
		return out
	}
	when := "Recorded " + r.Meta.StartTime.Format(timeLayout)
	if r.Meta.Fix != nil {
		when += " " + r.Meta.Fix.String()
	}
	return append(out, when)
}

// Report returns the file's own section: header, body and species lines.
func (r *FileReport) Report() []string {
	out := r.Header()
	out = append(out, r.Lines...)
	return append(out, StatLines(r.Stats)...)
}

// Lines renders the whole report: each file's section separated by ***,
// then ######### and the species totals across all files.
func (b *BatchReport) Lines() []string {
	out := append([]string(nil), b.Title...)
	for i, f := range b.Files {
		if i > 0 {
			out = append(out, FileSeparator)
		}
		out = append(out, f.Report()...)
	}
	out = append(out, TotalSeparator)
	return append(out, StatLines(b.Totals)...)
}
