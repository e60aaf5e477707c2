package batlog

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/audio"
	"github.com/himanishpuri/BatLog/pkg/batlog/storage"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceYAML = `species:
  - genus: Pipistrellus
    species: pygmaeus
    common_names: [Soprano Pipistrelle]
    tags: [Soprano Pip, P55]
  - genus: Nyctalus
    species: noctula
    common_names: [Noctule]
    tags: [Noc]
`

func newTestService(t *testing.T, opts ...Option) Service {
	t.Helper()
	opts = append([]Option{
		WithDBPath(filepath.Join(t.TempDir(), "batlog.sqlite3")),
		WithLogger(logger.Discard()),
	}, opts...)
	svc, err := NewService(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	st, err := svc.ImportReference(strings.NewReader(referenceYAML))
	require.NoError(t, err)
	require.Equal(t, ImportStats{Added: 2}, st)
	return svc
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestImportReferenceUpdatesExisting(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.ImportReference(strings.NewReader(`species:
  - genus: Nyctalus
    species: noctula
    common_names: [Common Noctule]
    tags: [NOC]
`))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Updated: 1}, st)

	species, err := svc.ListSpecies()
	require.NoError(t, err)
	require.Len(t, species, 2)
	assert.Equal(t, "Common Noctule", species[0].DisplayName())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportReference(&buf))
	assert.Contains(t, buf.String(), "Common Noctule")
}

func TestMatcherRefreshesAfterMutation(t *testing.T) {
	svc := newTestService(t, WithMatcherTTL(time.Hour))

	matches, err := svc.MatchComment("BLE foraging")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = svc.AddSpecies(models.Species{
		Genus: "Plecotus", Species: "auritus",
		CommonNames: []string{"Brown Long-eared"}, Tags: []string{"BLE"},
	})
	require.NoError(t, err)

	matches, err = svc.MatchComment("BLE foraging")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Brown Long-eared", matches[0].Species.DisplayName())
	assert.Equal(t, 0, matches[0].Offset)
}

func TestLegacyPositionCheck(t *testing.T) {
	svc := newTestService(t, WithLegacyPositionCheck(true))

	matches, err := svc.MatchComment("P55 overhead")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSummarizeFolder(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "0.0 2.0 Soprano Pip seen\n3.0 3.5 P55\n")
	writeFile(t, filepath.Join(root, "a.log.txt"), "0 100 Noc\n")
	writeFile(t, filepath.Join(root, "night2", "b.txt"), "0 1 Noc\n")
	writeFile(t, filepath.Join(root, "night2", "c.txt"), "[SKIP]\n0 1 Noc\n")

	report, err := svc.SummarizeFolder(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "night2", "b.txt"),
	}, report.Manifest())

	pip, ok := report.Totals.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 2, pip.Passes)
	assert.Equal(t, 2500*time.Millisecond, pip.Total)

	noc, ok := report.Totals.Get("Noctule")
	require.True(t, ok)
	assert.Equal(t, 1, noc.Count)
}

func TestImportRecordingAndSessionReport(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	const rate = 192000
	samples := make([]float64, rate)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*45000*float64(i)/rate)
	}
	require.NoError(t, audio.WriteWAV(filepath.Join(dir, "20240601_213000.wav"), samples, rate))
	textPath := filepath.Join(dir, "20240601_213000.txt")
	writeFile(t, textPath, "Riverside pass\n0.1 0.4 P55 feeding\nSTART - END Noc\n[COPY]\n0 1 Noc\n")

	sessionID, err := svc.CreateSession(models.Session{
		Name:      "Riverside",
		StartDate: time.Date(2024, 6, 1, 21, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	rec, err := svc.ImportRecording(context.Background(), sessionID, textPath)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "20240601_213000.wav", rec.FileName)
	assert.Equal(t, 2024, rec.StartTime.Year())
	assert.InDelta(t, 1000, rec.DurationMs, 5)
	require.Len(t, rec.Segments, 2)
	assert.InDelta(t, 45000, rec.Segments[0].PeakFrequency, float64(rate)/1024)
	assert.Equal(t, int64(0), rec.Segments[1].StartMs)

	report, err := svc.SessionReport(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Riverside", report.Title[0])

	pip, ok := report.Totals.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, pip.Total)
	_, ok = report.Totals.Get("Noctule")
	assert.True(t, ok)

	require.NoError(t, svc.DeleteSession(sessionID))
	_, err = svc.SessionReport(context.Background(), sessionID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImportRecordingNonWAVWithoutFFmpeg(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	t.Setenv("PATH", t.TempDir())

	writeFile(t, filepath.Join(dir, "20240601_213000.flac"), "not really flac")
	textPath := filepath.Join(dir, "20240601_213000.txt")
	writeFile(t, textPath, "0.1 0.4 P55\n")

	sessionID, err := svc.CreateSession(models.Session{Name: "s"})
	require.NoError(t, err)

	rec, err := svc.ImportRecording(context.Background(), sessionID, textPath)
	require.NoError(t, err)
	assert.Equal(t, "20240601_213000.flac", rec.FileName)
	require.Len(t, rec.Segments, 1)
	assert.Zero(t, rec.Segments[0].PeakFrequency)
}

func TestImportRecordingSkippedFile(t *testing.T) {
	svc := newTestService(t)
	textPath := filepath.Join(t.TempDir(), "x.txt")
	writeFile(t, textPath, "[LOG]\n0 1 Noc\n")

	sessionID, err := svc.CreateSession(models.Session{Name: "s"})
	require.NoError(t, err)

	_, err = svc.ImportRecording(context.Background(), sessionID, textPath)
	assert.ErrorIs(t, err, ErrSkippedFile)
}

func TestSummarizeLines(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.SummarizeLines("pasted", []string{"0.0 2.0 Soprano Pip seen", "3.0 3.5 P55"})
	require.NoError(t, err)
	st, ok := r.Stats.Get("Soprano Pipistrelle")
	require.True(t, ok)
	assert.Equal(t, 2, st.Count)
}

func TestSessionReportFallsBackToSessionPosition(t *testing.T) {
	svc := newTestService(t, WithGPSMaxGap(15*time.Minute))
	dir := t.TempDir()

	sessionID, err := svc.CreateSession(models.Session{
		Name:      "Riverside",
		StartDate: time.Date(2024, 6, 1, 21, 0, 0, 0, time.Local),
		EndDate:   time.Date(2024, 6, 1, 23, 0, 0, 0, time.Local),
		Latitude:  51.5,
		Longitude: -0.125,
	})
	require.NoError(t, err)

	for _, name := range []string{"20240601_213000.txt", "20240601_231000.txt", "20240602_013000.txt"} {
		path := filepath.Join(dir, name)
		writeFile(t, path, "0.0 1.0 Noc\n")
		_, err := svc.ImportRecording(context.Background(), sessionID, path)
		require.NoError(t, err)
	}

	report, err := svc.SessionReport(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	assert.Equal(t, []string{
		"20240601_213000.txt",
		"Recorded 2024-06-01 21:30:00 (51.50000, -0.12500)",
	}, report.Files[0].Header())
	assert.NotNil(t, report.Files[1].Meta.Fix, "within the allowed gap after the session ends")
	assert.Nil(t, report.Files[2].Meta.Fix)
	assert.Contains(t, report.Title, "Position (51.50000, -0.12500)")
}
