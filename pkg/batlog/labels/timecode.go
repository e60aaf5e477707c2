package labels

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitRun   = regexp.MustCompile(`\d+`)
	decimalNum = regexp.MustCompile(`^(\d+)(?:\.(\d*))?$`)
)

// ParseSeconds converts decimal seconds ("1.5", "12.034000") to a duration
// with millisecond precision. Extra fractional digits are truncated and
// malformed text yields 0.
func ParseSeconds(s string) time.Duration {
	m := decimalNum.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	return compose(0, atoi(m[1]), millis(m[2]))
}

// ParseTimeToken parses a hand-written offset such as 13, 13.5, 2'13 or 2'13.5".
// One digit run is seconds; two runs are minutes and seconds when an
// apostrophe separates them, otherwise seconds and milliseconds; three runs
// are minutes, seconds and milliseconds. Anything else yields 0.
func ParseTimeToken(s string) time.Duration {
	runs := digitRun.FindAllStringIndex(s, -1)
	switch len(runs) {
	case 1:
		return compose(0, atoi(s[runs[0][0]:runs[0][1]]), 0)
	case 2:
		first := s[runs[0][0]:runs[0][1]]
		second := s[runs[1][0]:runs[1][1]]
		if strings.Contains(s[runs[0][1]:runs[1][0]], "'") {
			return compose(atoi(first), atoi(second), 0)
		}
		return compose(0, atoi(first), millis(second))
	case 3:
		return compose(
			atoi(s[runs[0][0]:runs[0][1]]),
			atoi(s[runs[1][0]:runs[1][1]]),
			millis(s[runs[2][0]:runs[2][1]]),
		)
	default:
		return 0
	}
}

// compose returns 0 for negative parts and for totals beyond time.Duration.
func compose(minutes, seconds, ms int64) time.Duration {
	if minutes < 0 || seconds < 0 || ms < 0 ||
		minutes > int64(math.MaxInt64/time.Minute) ||
		seconds > int64(math.MaxInt64/time.Second) ||
		ms > int64(math.MaxInt64/time.Millisecond) {
		return 0
	}
	d := time.Duration(minutes) * time.Minute
	for _, part := range []time.Duration{
		time.Duration(seconds) * time.Second,
		time.Duration(ms) * time.Millisecond,
	} {
		if d > math.MaxInt64-part {
			return 0
		}
		d += part
	}
	return d
}

// atoi returns -1 for text that is not a non-negative int64.
func atoi(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// millis reads a fractional digit run as milliseconds: "5" is 500, "0345" is 34.
func millis(frac string) int64 {
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	return atoi(frac)
}

// FormatOffset renders an offset as m'S.mmm", the notation used in processed label lines.
func FormatOffset(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Truncate(time.Millisecond)
	m := int(d / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	return fmt.Sprintf("%s%d'%d.%03d\"", sign, m, s, ms)
}

// FormatDuration renders d as HhMM'SS.sss", dropping the hour part when it is
// zero and the minute part when hours and minutes are both zero.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Truncate(time.Millisecond)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	switch {
	case h > 0:
		return fmt.Sprintf("%s%dh%02d'%02d.%03d\"", sign, h, m, s, ms)
	case m > 0:
		return fmt.Sprintf("%s%d'%02d.%03d\"", sign, m, s, ms)
	default:
		return fmt.Sprintf("%s%d.%03d\"", sign, s, ms)
	}
}

// FormatSeconds renders d as decimal seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	d = d.Truncate(time.Millisecond)
	return fmt.Sprintf("%d.%03d", int64(d/time.Second), int64(d%time.Second/time.Millisecond))
}
