// Package labels recognises the textual encodings of labelled time intervals
// found in exported label files and hand-written field notes.
package labels

import (
	"regexp"
	"strings"
	"time"
)

// Kind classifies an input line.
type Kind int

const (
	KindText Kind = iota
	KindBlank
	KindLabel
	KindManual
	KindDirective
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBlank:
		return "blank"
	case KindLabel:
		return "label"
	case KindManual:
		return "manual"
	case KindDirective:
		return "directive"
	default:
		return "unknown"
	}
}

// Directive is a file-mode marker line.
type Directive int

const (
	DirectiveNone Directive = iota
	DirectiveSkip
	DirectiveCopy
	DirectiveMerge
	DirectiveUnknown
)

const (
	startToken = "START"
	endToken   = "END"
)

var (
	// Audacity label export: "start<ws>end<ws>comment".
	labelLine = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?)\s+(\d+(?:\.\d*)?)(?:\s+(.*?))?\s*$`)
	// Field notes: "2'13.5 - 2'17.8 comment", "START to 0'04 comment".
	manualLine = regexp.MustCompile(`^\s*(START|[\d'."]+)(?:\s*[-–]\s*|\s+to\s+)(END|[\d'."]+)(?:\s+(.*?))?\s*$`)
)

// Interval is a labelled span extracted from one line.
type Interval struct {
	Start   time.Duration
	End     time.Duration
	Comment string
}

// Duration returns End-Start. It may be negative for malformed lines.
func (iv Interval) Duration() time.Duration {
	return iv.End - iv.Start
}

// Format renders the interval as m'S.mmm" - m'S.mmm" = m'S.mmm" followed by a tab and the comment.
func (iv Interval) Format() string {
	var b strings.Builder
	b.WriteString(FormatOffset(iv.Start))
	b.WriteString(" - ")
	b.WriteString(FormatOffset(iv.End))
	b.WriteString(" = ")
	b.WriteString(FormatOffset(iv.Duration()))
	b.WriteByte('\t')
	b.WriteString(iv.Comment)
	return b.String()
}

// Classify returns the kind of line without extracting anything.
func Classify(line string) Kind {
	_, kind := Parse(line, 0)
	return kind
}

// Parse classifies line and, for label and manual lines, extracts the interval.
// fileDuration replaces the END token of manual lines; 0 when unknown.
func Parse(line string, fileDuration time.Duration) (Interval, Kind) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Interval{}, KindBlank
	}
	if strings.HasPrefix(trimmed, "[") {
		return Interval{}, KindDirective
	}
	if m := labelLine.FindStringSubmatch(line); m != nil {
		return Interval{
			Start:   ParseSeconds(m[1]),
			End:     ParseSeconds(m[2]),
			Comment: m[3],
		}, KindLabel
	}
	if m := manualLine.FindStringSubmatch(line); m != nil {
		start := ParseTimeToken(m[1])
		if m[1] == startToken {
			start = 0
		}
		end := ParseTimeToken(m[2])
		if m[2] == endToken {
			end = fileDuration
		}
		return Interval{Start: start, End: end, Comment: m[3]}, KindManual
	}
	return Interval{}, KindText
}

// ParseDirective maps a directive line to its file mode. Matching ignores case.
func ParseDirective(line string) Directive {
	trimmed := strings.ToUpper(strings.TrimSpace(line))
	if !strings.HasPrefix(trimmed, "[") {
		return DirectiveNone
	}
	switch {
	case strings.HasPrefix(trimmed, "[SKIP]"), strings.HasPrefix(trimmed, "[LOG]"):
		return DirectiveSkip
	case strings.HasPrefix(trimmed, "[COPY]"):
		return DirectiveCopy
	case strings.HasPrefix(trimmed, "[MERGE]"):
		return DirectiveMerge
	default:
		return DirectiveUnknown
	}
}
