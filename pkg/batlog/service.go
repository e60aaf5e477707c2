//go:build !js && !wasm
// +build !js,!wasm

package batlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/audio"
	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/batlog/reference"
	"github.com/himanishpuri/BatLog/pkg/batlog/spectral"
	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/himanishpuri/BatLog/pkg/utils"
	"github.com/patrickmn/go-cache"
)

const matcherKey = "matcher"

// ErrSkippedFile is returned when a label file asks not to be processed.
var ErrSkippedFile = errors.New("file is marked [SKIP]")

// batlogService is the default implementation of the Service interface.
type batlogService struct {
	storage  Storage
	log      Logger
	config   *Config
	matchers *cache.Cache
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Module("batlog")
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	ttl := cfg.MatcherTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &batlogService{
		storage:  stor,
		log:      cfg.Logger,
		config:   cfg,
		matchers: cache.New(ttl, 10*time.Minute),
	}, nil
}

func (s *batlogService) AddSpecies(sp models.Species) (uint, error) {
	id, err := s.storage.InsertSpecies(sp)
	if err != nil {
		return 0, err
	}
	s.invalidate()
	s.log.Infof("Added species %s (id=%d)", sp.Binomial(), id)
	return id, nil
}

func (s *batlogService) UpdateSpecies(sp models.Species) error {
	if err := s.storage.UpdateSpecies(sp); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *batlogService) GetSpecies(id uint) (models.Species, error) {
	return s.storage.GetSpeciesByID(id)
}

func (s *batlogService) ListSpecies() ([]models.Species, error) {
	return s.storage.ListSpecies()
}

func (s *batlogService) DeleteSpecies(id uint) error {
	if err := s.storage.DeleteSpeciesByID(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ImportReference adds the species in r, overwriting stored species with the
// same genus and epithet.
func (s *batlogService) ImportReference(r io.Reader) (ImportStats, error) {
	var st ImportStats
	incoming, err := reference.Load(r)
	if err != nil {
		return st, err
	}
	existing, err := s.storage.ListSpecies()
	if err != nil {
		return st, err
	}
	ids := make(map[string]uint, len(existing))
	for _, sp := range existing {
		ids[strings.ToLower(sp.Binomial())] = sp.ID
	}

	defer s.invalidate()
	for _, sp := range incoming {
		if id, ok := ids[strings.ToLower(sp.Binomial())]; ok {
			sp.ID = id
			if err := s.storage.UpdateSpecies(sp); err != nil {
				return st, fmt.Errorf("updating %s: %w", sp.Binomial(), err)
			}
			st.Updated++
			continue
		}
		id, err := s.storage.InsertSpecies(sp)
		if err != nil {
			return st, fmt.Errorf("adding %s: %w", sp.Binomial(), err)
		}
		ids[strings.ToLower(sp.Binomial())] = id
		st.Added++
	}
	s.log.Infof("Imported reference data: %d added, %d updated", st.Added, st.Updated)
	return st, nil
}

func (s *batlogService) ExportReference(w io.Writer) error {
	species, err := s.storage.ListSpecies()
	if err != nil {
		return err
	}
	return reference.Save(w, species)
}

// Matcher returns a matcher over the current reference data. It is rebuilt
// after any species change or once the configured TTL passes.
func (s *batlogService) Matcher() (*tagmatch.Matcher, error) {
	if m, ok := s.matchers.Get(matcherKey); ok {
		return m.(*tagmatch.Matcher), nil
	}

	refs, err := s.storage.TagSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	var opts []tagmatch.Option
	if s.config.LegacyPositionCheck {
		opts = append(opts, tagmatch.WithLegacyPositionCheck())
	}
	m := tagmatch.New(refs, opts...)
	s.matchers.Set(matcherKey, m, cache.DefaultExpiration)
	s.log.Debugf("Built matcher over %d tags", m.Len())
	return m, nil
}

func (s *batlogService) invalidate() {
	s.matchers.Delete(matcherKey)
}

func (s *batlogService) MatchComment(comment string) ([]tagmatch.Match, error) {
	m, err := s.Matcher()
	if err != nil {
		return nil, err
	}
	return m.FindTags(comment), nil
}

func (s *batlogService) summarizer(extra ...summary.Option) (*summary.Summarizer, error) {
	m, err := s.Matcher()
	if err != nil {
		return nil, err
	}
	opts := []summary.Option{
		summary.WithLogger(s.log),
		summary.WithGPS(s.config.GPS),
		summary.WithObserver(s.config.Observer),
		summary.WithWorkers(s.config.Workers),
	}
	return summary.New(m, append(opts, extra...)...), nil
}

// SummarizeLines summarizes text that did not come from a file on disk.
func (s *batlogService) SummarizeLines(name string, lines []string) (*summary.FileReport, error) {
	sum, err := s.summarizer()
	if err != nil {
		return nil, err
	}
	return sum.SummarizeLines(name, lines, summary.Meta{Path: name}), nil
}

func (s *batlogService) SummarizeFiles(ctx context.Context, paths []string) (*summary.BatchReport, error) {
	sum, err := s.summarizer()
	if err != nil {
		return nil, err
	}
	s.log.Infof("Summarizing %d file(s)", len(paths))
	return sum.SummarizeFiles(ctx, paths)
}

// SummarizeFolder summarizes every label file below root. Unreadable
// directories are logged and skipped.
func (s *batlogService) SummarizeFolder(ctx context.Context, root string) (*summary.BatchReport, error) {
	var paths []string
	for path, err := range utils.WalkLabelFiles(root) {
		if err != nil {
			s.log.Warnf("Skipping %s: %v", path, err)
			continue
		}
		paths = append(paths, path)
	}
	return s.SummarizeFiles(ctx, paths)
}

func (s *batlogService) CreateSession(session models.Session) (string, error) {
	id, err := s.storage.CreateSession(session)
	if err != nil {
		return "", err
	}
	s.log.Infof("Created session %q (%s)", session.Name, id)
	return id, nil
}

func (s *batlogService) GetSession(id string) (models.Session, error) {
	return s.storage.GetSession(id)
}

func (s *batlogService) ListSessions() ([]models.Session, error) {
	return s.storage.ListSessions()
}

func (s *batlogService) DeleteSession(id string) error {
	return s.storage.DeleteSession(id)
}

func (s *batlogService) ListRecordings(sessionID string) ([]models.Recording, error) {
	return s.storage.ListRecordings(sessionID)
}

// ImportRecording stores the intervals of a label file as a recording of the
// session. When a recording sits next to the file, each segment's peak
// frequency is measured from the audio. Non-WAV recordings go through ffmpeg
// first; without it their peaks stay 0.
func (s *batlogService) ImportRecording(ctx context.Context, sessionID, textPath string) (models.Recording, error) {
	lines, err := utils.ReadLines(textPath)
	if err != nil {
		return models.Recording{}, fmt.Errorf("reading %s: %w", textPath, err)
	}
	meta := summary.DiskSource{}.Meta(ctx, textPath)

	segments, err := extractSegments(lines, meta.Duration)
	if err != nil {
		return models.Recording{}, fmt.Errorf("%s: %w", textPath, err)
	}

	name := filepath.Base(textPath)
	if meta.AudioPath != "" {
		name = filepath.Base(meta.AudioPath)
		s.measurePeaks(ctx, meta.AudioPath, segments)
	}

	rec := models.Recording{
		SessionID:  sessionID,
		FileName:   name,
		StartTime:  meta.StartTime,
		DurationMs: int(meta.Duration / time.Millisecond),
		Segments:   segments,
	}
	rec.ID, err = s.storage.AddRecording(rec)
	if err != nil {
		return models.Recording{}, err
	}
	s.log.Infof("Imported %s with %d segment(s) into session %s", name, len(segments), sessionID)
	return rec, nil
}

// extractSegments collects the intervals of the processed part of a file.
// Lines after [COPY] are not intervals.
func extractSegments(lines []string, fileDuration time.Duration) ([]models.Segment, error) {
	var out []models.Segment
	for _, line := range lines {
		iv, kind := labels.Parse(line, fileDuration)
		switch kind {
		case labels.KindDirective:
			switch labels.ParseDirective(line) {
			case labels.DirectiveSkip:
				return nil, ErrSkippedFile
			case labels.DirectiveCopy:
				return out, nil
			}
		case labels.KindLabel, labels.KindManual:
			out = append(out, models.Segment{
				StartMs: int64(iv.Start / time.Millisecond),
				EndMs:   int64(iv.End / time.Millisecond),
				Comment: iv.Comment,
			})
		}
	}
	return out, nil
}

func (s *batlogService) measurePeaks(ctx context.Context, audioPath string, segments []models.Segment) {
	wavPath := audioPath
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		dir, err := os.MkdirTemp("", "batlog-peaks-")
		if err != nil {
			s.log.Warnf("Temp dir for %s: %v", audioPath, err)
			return
		}
		defer os.RemoveAll(dir)

		wavPath, err = audio.ConvertToMonoWAV(ctx, audioPath, dir, 0)
		if err != nil {
			s.log.Warnf("Skipping peak frequencies for %s: %v", filepath.Base(audioPath), err)
			return
		}
	}
	samples, rate, err := audio.ReadSamples(wavPath)
	if err != nil {
		s.log.Warnf("Reading %s for peak frequencies: %v", audioPath, err)
		return
	}
	for i := range segments {
		seg := &segments[i]
		start := time.Duration(seg.StartMs) * time.Millisecond
		end := time.Duration(seg.EndMs) * time.Millisecond
		clip := audio.Slice(samples, rate, start, end)
		peak, err := spectral.PeakFrequency(clip, rate, s.config.MinPeakHz)
		if err != nil {
			s.log.Debugf("No peak for %s segment %d: %v", filepath.Base(audioPath), i, err)
			continue
		}
		seg.PeakFrequency = peak
	}
}

func (s *batlogService) SessionReport(_ context.Context, sessionID string) (*summary.BatchReport, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	recs, err := s.storage.ListRecordings(sessionID)
	if err != nil {
		return nil, err
	}
	sum, err := s.summarizer(summary.WithGPS(s.sessionGPS(session)))
	if err != nil {
		return nil, err
	}
	return sum.SummarizeSession(session, recs), nil
}

// sessionGPS falls back to the session's own position for recordings the
// configured provider cannot place.
func (s *batlogService) sessionGPS(session models.Session) gps.Provider {
	if session.StartDate.IsZero() || (session.Latitude == 0 && session.Longitude == 0) {
		return s.config.GPS
	}
	return gps.Chain{s.config.GPS, gps.Static{
		Fix:   gps.Fix{Latitude: session.Latitude, Longitude: session.Longitude},
		From:  session.StartDate,
		To:    session.EndDate,
		Slack: s.config.GPSMaxGap,
	}}
}

func (s *batlogService) Close() error {
	return s.storage.Close()
}
