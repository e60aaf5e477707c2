// Package tagmatch resolves the bat species referenced by a free-text comment
// from a fixed snapshot of identifying tags.
package tagmatch

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/himanishpuri/BatLog/pkg/models"
	"golang.org/x/text/unicode/norm"
)

// Match is one tag consumed from a comment.
type Match struct {
	Tag     string
	Offset  int // byte offset in the comment as it stood when the tag was consumed
	Species models.Species
}

type entry struct {
	text  string
	upper bool
	ref   models.TagRef
}

// Matcher is immutable once built; refreshing reference data means building a new one.
type Matcher struct {
	entries []entry
	minPos  int
}

type Option func(*Matcher)

// WithLegacyPositionCheck treats a tag found at the very start of a comment as
// not matched, reproducing reports generated by older releases.
func WithLegacyPositionCheck() Option {
	return func(m *Matcher) {
		m.minPos = 1
	}
}

// New builds a matcher over refs. Tags are ordered longest first so a tag
// contained in a longer one (BLE in NOBLE) never steals the longer match;
// duplicate tag texts keep their first owner.
func New(refs []models.TagRef, opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		text := norm.NFC.String(ref.TagText)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		m.entries = append(m.entries, entry{
			text:  text,
			upper: text == strings.ToUpper(text),
			ref:   ref,
		})
	}

	sort.SliceStable(m.entries, func(i, j int) bool {
		return utf8.RuneCountInString(m.entries[i].text) > utf8.RuneCountInString(m.entries[j].text)
	})
	return m
}

// Len returns the number of distinct tags.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// FindSpecies returns the species referenced by comment in match order.
// A species appears once per matched tag.
func (m *Matcher) FindSpecies(comment string) []models.Species {
	matches := m.FindTags(comment)
	if len(matches) == 0 {
		return nil
	}
	out := make([]models.Species, 0, len(matches))
	for _, mt := range matches {
		out = append(out, mt.Species)
	}
	return out
}

// FindTags returns each tag consumed from comment.
func (m *Matcher) FindTags(comment string) []Match {
	if m == nil || len(m.entries) == 0 {
		return nil
	}
	work := norm.NFC.String(comment)
	if strings.TrimSpace(work) == "" {
		return nil
	}

	candidates := make([]entry, 0, 4)
	for _, e := range m.entries {
		if start, _ := e.index(work); start >= 0 {
			candidates = append(candidates, e)
		}
	}

	var out []Match
	for _, e := range candidates {
		start, end := e.index(work)
		if start < m.minPos {
			continue
		}
		work = work[:start] + work[end:]
		out = append(out, Match{Tag: e.text, Offset: start, Species: e.ref.Species})
		if strings.TrimSpace(work) == "" {
			break
		}
	}
	return out
}

// index locates the first occurrence of the tag in s and returns its byte span.
func (e entry) index(s string) (int, int) {
	if e.upper {
		i := strings.Index(s, e.text)
		if i < 0 {
			return -1, -1
		}
		return i, i + len(e.text)
	}
	return indexFold(s, e.text)
}

func indexFold(s, substr string) (int, int) {
	for i := 0; i < len(s); {
		if n, ok := hasPrefixFold(s[i:], substr); ok {
			return i, i + n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, -1
}

// hasPrefixFold reports whether s starts with prefix ignoring case and
// returns the byte length of the matching part of s.
func hasPrefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[n:])
		if r != pr && unicode.ToLower(r) != unicode.ToLower(pr) && unicode.ToUpper(r) != unicode.ToUpper(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}
