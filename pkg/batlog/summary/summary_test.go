package summary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sopranoPip = models.Species{
		ID: 1, Genus: "Pipistrellus", Species: "pygmaeus",
		CommonNames: []string{"Soprano Pipistrelle"},
		Tags:        []string{"Soprano Pip", "P55"},
	}
	noctule = models.Species{
		ID: 2, Genus: "Nyctalus", Species: "noctula",
		CommonNames: []string{"Noctule"},
		Tags:        []string{"Noc"},
	}
)

type memSource struct {
	files map[string][]string
	meta  map[string]Meta
}

func (m memSource) Lines(_ context.Context, path string) ([]string, error) {
	lines, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return lines, nil
}

func (m memSource) Meta(_ context.Context, path string) Meta {
	if meta, ok := m.meta[path]; ok {
		return meta
	}
	return Meta{Path: path}
}

type countingObserver struct {
	mu      sync.Mutex
	modes   map[Mode]int
	failed  int
	matched map[string]time.Duration
}

func newCountingObserver() *countingObserver {
	return &countingObserver{modes: map[Mode]int{}, matched: map[string]time.Duration{}}
}

func (o *countingObserver) FileSummarized(m Mode, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modes[m]++
}

func (o *countingObserver) FileFailed(string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *countingObserver) IntervalParsed(string, time.Duration) {}

func (o *countingObserver) SpeciesMatched(name string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matched[name] += d
}

func newTestSummarizer(src FileSource, opts ...Option) *Summarizer {
	m := tagmatch.New(models.Snapshot([]models.Species{sopranoPip, noctule}))
	opts = append([]Option{WithSource(src), WithLogger(logger.Discard()), WithWorkers(4)}, opts...)
	return New(m, opts...)
}

func TestSummarizeLinesEndToEnd(t *testing.T) {
	s := newTestSummarizer(memSource{})

	r := s.SummarizeLines("a.txt", []string{"0.0 2.0 Soprano Pip seen", "3.0 3.5 P55"}, Meta{})

	assert.Equal(t, ModeProcess, r.Mode)
	require.Equal(t, 1, r.Stats.Len())
	st, ok := r.Stats.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 2, st.Passes)
	assert.Equal(t, 2500*time.Millisecond, st.Total)

	assert.Equal(t, []string{
		"0'0.000\" - 0'2.000\" = 0'2.000\"\tSoprano Pip seen",
		"0'3.000\" - 0'3.500\" = 0'0.500\"\tP55",
	}, r.Lines)
	assert.Equal(t,
		"Soprano Pipistrelle 2 passes in 2 segments = (Min=0.500\", Max=2.000\", Mean=1.250\") Total duration=2.500\"",
		FormatStat(st))
}

func TestSummarizeLinesPassThroughAndManual(t *testing.T) {
	s := newTestSummarizer(memSource{})

	r := s.SummarizeLines("notes.txt", []string{
		"Night of 1 June",
		"",
		"START - 0'04.5 Noc overhead",
		"1'00 - END Soprano pip feeding",
	}, Meta{Duration: 70 * time.Second})

	require.Len(t, r.Lines, 4)
	assert.Equal(t, "Night of 1 June", r.Lines[0])
	assert.Equal(t, "", r.Lines[1])
	assert.Equal(t, "0'0.000\" - 0'4.500\" = 0'4.500\"\tNoc overhead", r.Lines[2])

	noc, ok := r.Stats.Get("Noctule")
	require.True(t, ok)
	assert.Equal(t, 4500*time.Millisecond, noc.Total)

	pip, ok := r.Stats.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, pip.Total)
	assert.Equal(t, 2, pip.Passes)
}

func TestSummarizeLinesMalformedContributesNothing(t *testing.T) {
	s := newTestSummarizer(memSource{})

	r := s.SummarizeLines("bad.txt", []string{"4.0 2.0 Noc backwards", "5 5 Noc zero"}, Meta{})

	assert.Len(t, r.Lines, 2)
	assert.Zero(t, r.Stats.Len())
}

func TestSummarizeLinesOutOfRangeTimeContributesNothing(t *testing.T) {
	s := newTestSummarizer(memSource{})

	r := s.SummarizeLines("huge.txt", []string{"0.0 9999999999999.0 P55"}, Meta{})

	assert.Len(t, r.Lines, 1)
	_, ok := r.Stats.Get("Soprano Pipistrelle")
	assert.False(t, ok)
}

func TestSummarizeLinesDirectives(t *testing.T) {
	s := newTestSummarizer(memSource{})

	skipped := s.SummarizeLines("s.txt", []string{"0 1 Noc", "[log]", "1 2 Noc"}, Meta{})
	assert.Equal(t, ModeSkip, skipped.Mode)
	assert.Empty(t, skipped.Lines)
	assert.Zero(t, skipped.Stats.Len())

	copied := s.SummarizeLines("c.txt", []string{
		"0 1 Noc",
		"[COPY]",
		"2 3 Noc kept verbatim",
		"[MERGE]",
		"pool one",
		"",
		"pool two",
	}, Meta{})
	assert.Equal(t, ModeMerge, copied.Mode)
	assert.Equal(t, []string{"0'0.000\" - 0'1.000\" = 0'1.000\"\tNoc", "2 3 Noc kept verbatim"}, copied.Lines)
	assert.Equal(t, []string{"pool one", "pool two"}, copied.Pool)

	noc, _ := copied.Stats.Get("Noctule")
	assert.Equal(t, 1, noc.Count)
}

func TestSummarizeFilesReport(t *testing.T) {
	start := time.Date(2024, 6, 1, 21, 30, 0, 0, time.UTC)
	src := memSource{
		files: map[string][]string{
			"one.txt":   {"0.0 2.0 Soprano Pip seen", "3.0 3.5 P55"},
			"skip.txt":  {"[SKIP]", "0 9 Noc"},
			"merge.txt": {"[COPY]", "copied", "[MERGE]", "first pooled", "second pooled"},
			"two.txt":   {"0 10 Soprano Pip"},
			"three.txt": {"0 1 Noc"},
		},
		meta: map[string]Meta{"two.txt": {Path: "two.txt", StartTime: start}},
	}
	track := gps.NewTrack([]gps.Fix{{Time: start, Latitude: 51.5, Longitude: -0.125}}, time.Hour)
	obs := newCountingObserver()
	s := newTestSummarizer(src, WithGPS(track), WithObserver(obs))

	b, err := s.SummarizeFiles(context.Background(),
		[]string{"one.txt", "skip.txt", "missing.txt", "merge.txt", "two.txt", "three.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"one.txt", "merge.txt", "two.txt", "three.txt"}, b.Manifest())
	assert.Equal(t, []string{"skip.txt"}, b.Skipped)
	require.Len(t, b.Failed, 1)
	assert.Equal(t, "missing.txt", b.Failed[0].Path)

	assert.Equal(t, []string{
		"one.txt",
		"0'0.000\" - 0'2.000\" = 0'2.000\"\tSoprano Pip seen",
		"0'3.000\" - 0'3.500\" = 0'0.500\"\tP55",
		"Soprano Pipistrelle 2 passes in 2 segments = (Min=0.500\", Max=2.000\", Mean=1.250\") Total duration=2.500\"",
		FileSeparator,
		"merge.txt",
		"copied",
		FileSeparator,
		"two.txt",
		"Recorded 2024-06-01 21:30:00 (51.50000, -0.12500)",
		"first pooled",
		"0'0.000\" - 0'10.000\" = 0'10.000\"\tSoprano Pip",
		"Soprano Pipistrelle 2 passes in 1 segment = (Min=10.000\", Max=10.000\", Mean=10.000\") Total duration=10.000\"",
		FileSeparator,
		"three.txt",
		"second pooled",
		"0'0.000\" - 0'1.000\" = 0'1.000\"\tNoc",
		"Noctule 1 pass in 1 segment = (Min=1.000\", Max=1.000\", Mean=1.000\") Total duration=1.000\"",
		TotalSeparator,
		"Soprano Pipistrelle 4 passes in 3 segments = (Min=0.500\", Max=10.000\", Mean=4.166\") Total duration=12.500\"",
		"Noctule 1 pass in 1 segment = (Min=1.000\", Max=1.000\", Mean=1.000\") Total duration=1.000\"",
	}, b.Lines())

	assert.Equal(t, 1, obs.failed)
	assert.Equal(t, 1, obs.modes[ModeSkip])
	assert.Equal(t, 1, obs.modes[ModeMerge])
	assert.Equal(t, 12500*time.Millisecond, obs.matched["Soprano Pipistrelle"])
}

func TestSummarizeFilesMatchesSequentialOrder(t *testing.T) {
	files := map[string][]string{}
	var paths []string
	for i := range 40 {
		p := filepath.Join("f", string(rune('a'+i%26))+string(rune('0'+i/26))+".txt")
		files[p] = []string{"0 1 Noc", "1 3 Soprano Pip"}
		paths = append(paths, p)
	}
	src := memSource{files: files}

	parallel, err := newTestSummarizer(src, WithWorkers(8)).SummarizeFiles(context.Background(), paths)
	require.NoError(t, err)
	serial, err := newTestSummarizer(src, WithWorkers(1)).SummarizeFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, serial.Lines(), parallel.Lines())
	assert.Equal(t, paths, parallel.Manifest())
	noc, _ := parallel.Totals.Get("Noctule")
	assert.Equal(t, 40, noc.Count)
}

func TestSummarizeFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSummarizer(memSource{files: map[string][]string{"a.txt": {"0 1 Noc"}}})
	_, err := s.SummarizeFiles(ctx, []string{"a.txt"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSummarizeSessionRollup(t *testing.T) {
	s := newTestSummarizer(memSource{})
	session := models.Session{Name: "Riverside", Location: "Thames path", Latitude: 51.5, Longitude: -0.125}
	recs := []models.Recording{
		{FileName: "r1.wav", Segments: []models.Segment{
			{StartMs: 0, EndMs: 2000, Comment: "Soprano Pip seen"},
			{StartMs: 3000, EndMs: 3500, Comment: "P55"},
		}},
		{FileName: "r2.wav", Segments: []models.Segment{
			{StartMs: 0, EndMs: 10000, Comment: "soprano pip feeding buzz"},
		}},
	}

	b := s.SummarizeSession(session, recs)

	st, ok := b.Totals.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 4, st.Passes)
	assert.Equal(t, 12500*time.Millisecond, st.Total)
	assert.Equal(t, 12500*time.Millisecond/3, st.Mean)

	lines := b.Lines()
	assert.Equal(t, "Riverside, Thames path", lines[0])
	assert.Equal(t, "Position (51.50000, -0.12500)", lines[1])
	assert.Equal(t, "r1.wav", lines[2])
}

func TestWriteOutputs(t *testing.T) {
	s := newTestSummarizer(memSource{files: map[string][]string{"in.txt": {"0 1 Noc"}}})
	b, err := s.SummarizeFiles(context.Background(), []string{"in.txt"})
	require.NoError(t, err)

	dir := t.TempDir()
	logPath, manifestPath, err := WriteOutputs(b, filepath.Join(dir, "out", "night.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "night.log.txt"), logPath)
	assert.Equal(t, filepath.Join(dir, "out", "night.manifest"), manifestPath)

	manifest, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "in.txt\n", string(manifest))

	report, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), TotalSeparator+"\n")
}
