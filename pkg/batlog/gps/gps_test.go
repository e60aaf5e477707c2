package gps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackLocateNearest(t *testing.T) {
	base := time.Date(2024, 6, 12, 21, 0, 0, 0, time.UTC)
	track := NewTrack([]Fix{
		{Time: base.Add(10 * time.Minute), Latitude: 51.2, Longitude: -1.2},
		{Time: base, Latitude: 51.0, Longitude: -1.0},
		{Latitude: 99, Longitude: 99},
	}, 15*time.Minute)

	require.Equal(t, 2, track.Len())

	fix, ok := track.Locate(base.Add(2 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 51.0, fix.Latitude)

	fix, ok = track.Locate(base.Add(8 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 51.2, fix.Latitude)
}

func TestTrackLocateOutsideGap(t *testing.T) {
	base := time.Date(2024, 6, 12, 21, 0, 0, 0, time.UTC)
	track := NewTrack([]Fix{{Time: base, Latitude: 51, Longitude: -1}}, time.Minute)

	_, ok := track.Locate(base.Add(time.Hour))
	assert.False(t, ok)

	_, ok = track.Locate(time.Time{})
	assert.False(t, ok)
}

func TestNoneAndEmptyTrack(t *testing.T) {
	_, ok := None{}.Locate(time.Now())
	assert.False(t, ok)

	var nilTrack *Track
	_, ok = nilTrack.Locate(time.Now())
	assert.False(t, ok)
}

func TestFixString(t *testing.T) {
	assert.Equal(t, "(51.50000, -0.12000)", Fix{Latitude: 51.5, Longitude: -0.12}.String())
}

func TestStaticWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)
	s := Static{
		Fix:   Fix{Latitude: 51.5, Longitude: -0.125},
		From:  start,
		To:    start.Add(2 * time.Hour),
		Slack: 10 * time.Minute,
	}

	tests := []struct {
		name string
		at   time.Time
		ok   bool
	}{
		{"inside", start.Add(time.Hour), true},
		{"slack before", start.Add(-5 * time.Minute), true},
		{"slack after", start.Add(2*time.Hour + 10*time.Minute), true},
		{"too early", start.Add(-11 * time.Minute), false},
		{"too late", start.Add(3 * time.Hour), false},
		{"unknown time", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, ok := s.Locate(tt.at)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, 51.5, fix.Latitude)
				assert.Equal(t, tt.at, fix.Time)
			}
		})
	}

	_, ok := Static{Fix: s.Fix, From: start}.Locate(start.Add(time.Minute))
	assert.False(t, ok, "zero To and Slack is a single instant")
}

func TestChainFirstFixWins(t *testing.T) {
	at := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	track := NewTrack([]Fix{{Time: at, Latitude: 1, Longitude: 1}}, time.Minute)
	fallback := Static{Fix: Fix{Latitude: 2, Longitude: 2}, From: at.Add(-time.Hour), To: at.Add(time.Hour)}

	fix, ok := Chain{None{}, nil, track, fallback}.Locate(at)
	require.True(t, ok)
	assert.Equal(t, 1.0, fix.Latitude)

	fix, ok = Chain{track, fallback}.Locate(at.Add(30 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 2.0, fix.Latitude)

	_, ok = Chain{}.Locate(at)
	assert.False(t, ok)
}

func TestLoadTrack(t *testing.T) {
	track, err := LoadTrack(strings.NewReader(`
fixes:
  - {time: 2024-06-12T21:10:00Z, lat: 51.2, lon: -1.2}
  - {time: 2024-06-12T21:00:00Z, lat: 51.0, lon: -1.0}
`), 5*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, track.Len())

	fix, ok := track.Locate(time.Date(2024, 6, 12, 21, 1, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 51.0, fix.Latitude)

	_, ok = track.Locate(time.Date(2024, 6, 12, 22, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestLoadTrackErrors(t *testing.T) {
	_, err := LoadTrack(strings.NewReader("fixes:\n  - {time: 2024-06-12T21:00:00Z, lat: 95, lon: 0}\n"), 0)
	assert.ErrorContains(t, err, "out of range")

	_, err = LoadTrack(strings.NewReader("fixes: [unterminated"), 0)
	assert.Error(t, err)

	_, err = LoadTrackFile(filepath.Join(t.TempDir(), "missing.yaml"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTrackEmpty(t *testing.T) {
	track, err := LoadTrack(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Zero(t, track.Len())
}
