package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := NewLoader(t.TempDir()).Load("")
	require.NoError(t, err)

	assert.Equal(t, "batlog.sqlite3", s.DBPath)
	assert.Equal(t, 5*time.Minute, s.MatcherTTL)
	assert.Equal(t, 8080, s.Server.Port)
	assert.Equal(t, []string{"*"}, s.Server.Origins)
	assert.Equal(t, 10*time.Minute, s.GPS.MaxGap)
	assert.Equal(t, "", s.GPS.Track)

	p, err := s.GPSProvider()
	require.NoError(t, err)
	assert.Equal(t, gps.None{}, p)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batlog.yaml"), []byte(`
db_path: /data/bats.sqlite3
workers: 2
matcher_ttl: 30s
gps:
  max_gap: 2m
server:
  port: 9000
`), 0o644))

	t.Setenv("BATLOG_WORKERS", "6")
	t.Setenv("BATLOG_SERVER_PORT", "9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db-path", "", "")
	flags.Bool("legacy-position-check", false, "")
	require.NoError(t, flags.Parse([]string{"--legacy-position-check"}))

	l := NewLoader(dir)
	require.NoError(t, l.BindFlags(flags))
	s, err := l.Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/bats.sqlite3", s.DBPath, "unset flag must not override the file")
	assert.Equal(t, 6, s.Workers)
	assert.Equal(t, 9100, s.Server.Port)
	assert.Equal(t, 30*time.Second, s.MatcherTTL)
	assert.Equal(t, 2*time.Minute, s.GPS.MaxGap)
	assert.True(t, s.LegacyPositionCheck)
	assert.Equal(t, filepath.Join(dir, "batlog.yaml"), l.ConfigFile())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batlog.yaml"), []byte("workers: -1\n"), 0o644))

	_, err := NewLoader(dir).Load("")
	assert.ErrorContains(t, err, "workers")
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "server.port", FlagKey("server-port"))
	assert.Equal(t, "gps.max_gap", FlagKey("gps-max-gap"))
	assert.Equal(t, "db_path", FlagKey("db-path"))
}

func TestGPSProviderLoadsTrack(t *testing.T) {
	dir := t.TempDir()
	trackPath := filepath.Join(dir, "night.yaml")
	require.NoError(t, os.WriteFile(trackPath, []byte("fixes:\n  - {time: 2024-06-12T21:00:00Z, lat: 51.5, lon: -0.1}\n"), 0o644))
	t.Setenv("BATLOG_GPS_TRACK", trackPath)

	s, err := NewLoader(dir).Load("")
	require.NoError(t, err)
	require.Equal(t, trackPath, s.GPS.Track)

	p, err := s.GPSProvider()
	require.NoError(t, err)
	fix, ok := p.Locate(time.Date(2024, 6, 12, 21, 5, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 51.5, fix.Latitude)

	s.GPS.Track = filepath.Join(dir, "missing.yaml")
	_, err = s.GPSProvider()
	assert.ErrorContains(t, err, "gps.track")
}
