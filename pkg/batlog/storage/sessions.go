//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/himanishpuri/BatLog/pkg/models"
	"gorm.io/gorm"
)

// CreateSession stores s and returns its id. A blank id is assigned a UUID.
func (c *DBClient) CreateSession(s models.Session) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if strings.TrimSpace(s.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidSession)
	}
	if !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		return "", fmt.Errorf("%w: end date precedes start date", ErrInvalidSession)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	row := Session{
		ID:        s.ID,
		Name:      strings.TrimSpace(s.Name),
		Location:  s.Location,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Notes:     s.Notes,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return row.ID, nil
}

func (c *DBClient) GetSession(id string) (models.Session, error) {
	if err := c.ready(); err != nil {
		return models.Session{}, err
	}
	var row Session
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return models.Session{}, fmt.Errorf("session %s: %w", id, notFound(err))
	}
	return row.toModel(), nil
}

// ListSessions returns sessions newest first.
func (c *DBClient) ListSessions() ([]models.Session, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Session
	if err := c.DB.Order("start_date DESC, name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]models.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// DeleteSession removes a session with its recordings and their segments.
func (c *DBClient) DeleteSession(id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		recordingIDs := tx.Model(&Recording{}).Select("id").Where("session_id = ?", id)
		if err := tx.Where("recording_id IN (?)", recordingIDs).Delete(&Segment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&Recording{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// AddRecording stores rec and its segments under an existing session.
func (c *DBClient) AddRecording(rec models.Recording) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	row := Recording{
		ID:         rec.ID,
		SessionID:  rec.SessionID,
		FileName:   rec.FileName,
		StartTime:  rec.StartTime,
		DurationMs: rec.DurationMs,
		Notes:      rec.Notes,
	}
	for _, s := range rec.Segments {
		row.Segments = append(row.Segments, Segment{
			RecordingID:   rec.ID,
			StartMs:       s.StartMs,
			EndMs:         s.EndMs,
			Comment:       s.Comment,
			PeakFrequency: s.PeakFrequency,
		})
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Session{}).Where("id = ?", rec.SessionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("session %s: %w", rec.SessionID, ErrNotFound)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating recording %s: %w", rec.FileName, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// ListRecordings returns a session's recordings by start time, segments preloaded.
func (c *DBClient) ListRecordings(sessionID string) ([]models.Recording, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Recording
	err := c.DB.
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("start_ms, id") }).
		Where("session_id = ?", sessionID).
		Order("start_time, file_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	out := make([]models.Recording, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s Session) toModel() models.Session {
	return models.Session{
		ID:        s.ID,
		Name:      s.Name,
		Location:  s.Location,
		StartDate: localTime(s.StartDate),
		EndDate:   localTime(s.EndDate),
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Notes:     s.Notes,
	}
}

// localTime undoes the driver's UTC conversion so reports show wall-clock times.
func localTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Local()
}

func (r Recording) toModel() models.Recording {
	rec := models.Recording{
		ID:         r.ID,
		SessionID:  r.SessionID,
		FileName:   r.FileName,
		StartTime:  localTime(r.StartTime),
		DurationMs: r.DurationMs,
		Notes:      r.Notes,
	}
	for _, s := range r.Segments {
		rec.Segments = append(rec.Segments, models.Segment{
			ID:            s.ID,
			StartMs:       s.StartMs,
			EndMs:         s.EndMs,
			Comment:       s.Comment,
			PeakFrequency: s.PeakFrequency,
		})
	}
	return rec
}
