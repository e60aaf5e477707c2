package summary

import (
	"strings"

	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/batlog/stats"
)

// Mode is the state of a file while its lines are processed.
type Mode int

const (
	ModeProcess Mode = iota
	ModeSkip
	ModeCopy
	ModeMerge
)

func (m Mode) String() string {
	switch m {
	case ModeProcess:
		return "process"
	case ModeSkip:
		return "skip"
	case ModeCopy:
		return "copy"
	case ModeMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// FileReport is the outcome of summarizing one file.
type FileReport struct {
	Path  string
	Meta  Meta
	Mode  Mode
	Lines []string // body lines, without header or species summary
	Stats *stats.Aggregator
	Pool  []string // lines after [MERGE], handed to later files
	Err   error    // set when the file could not be read
}

// Skipped reports whether the file produces no output.
func (r *FileReport) Skipped() bool {
	return r.Mode == ModeSkip || r.Err != nil
}

// SummarizeLines runs the file state machine over lines.
//
// In process mode, label and manual lines are reformatted and their comment
// matched; each matched species accumulates the interval duration under its
// display name. [SKIP] or [LOG] discards the whole file. [COPY] switches to
// verbatim copying until [MERGE], after which lines go to the merge pool.
func (s *Summarizer) SummarizeLines(path string, lines []string, meta Meta) *FileReport {
	r := &FileReport{
		Path:  path,
		Meta:  meta,
		Mode:  ModeProcess,
		Stats: stats.NewAggregator(),
	}

	for _, line := range lines {
		switch r.Mode {
		case ModeCopy:
			if labels.ParseDirective(line) == labels.DirectiveMerge {
				r.Mode = ModeMerge
				continue
			}
			r.Lines = append(r.Lines, line)
		case ModeMerge:
			if strings.TrimSpace(line) != "" {
				r.Pool = append(r.Pool, line)
			}
		case ModeProcess:
			if s.processLine(r, line) {
				continue
			}
			s.obs.FileSummarized(ModeSkip, len(lines))
			return &FileReport{Path: path, Meta: meta, Mode: ModeSkip, Stats: stats.NewAggregator()}
		}
	}

	s.obs.FileSummarized(r.Mode, len(lines))
	return r
}

// processLine handles one line in process mode. It returns false when the
// file must be skipped.
func (s *Summarizer) processLine(r *FileReport, line string) bool {
	iv, kind := labels.Parse(line, r.Meta.Duration)
	switch kind {
	case labels.KindDirective:
		switch labels.ParseDirective(line) {
		case labels.DirectiveSkip:
			return false
		case labels.DirectiveCopy:
			r.Mode = ModeCopy
		default:
			s.log.Debugf("%s: passing through directive %q", r.Path, strings.TrimSpace(line))
			r.Lines = append(r.Lines, line)
		}
	case labels.KindLabel, labels.KindManual:
		s.addInterval(r, iv, kind.String())
	default:
		r.Lines = append(r.Lines, line)
	}
	return true
}

// addInterval writes the formatted interval and credits its duration to every
// species named in the comment.
func (s *Summarizer) addInterval(r *FileReport, iv labels.Interval, kind string) {
	d := iv.Duration()
	s.obs.IntervalParsed(kind, d)
	r.Lines = append(r.Lines, iv.Format())
	for _, sp := range s.matcher.FindSpecies(iv.Comment) {
		name := sp.DisplayName()
		r.Stats.Accumulate(name, d)
		if d > 0 {
			s.obs.SpeciesMatched(name, d)
		}
	}
}
