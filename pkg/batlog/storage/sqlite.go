//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"gorm.io/gorm"
)

const DefaultDBFile = "batlog.sqlite3"
const errDBClientNil = "db client is nil"

var (
	// ErrNotFound wraps gorm.ErrRecordNotFound for callers that should not import gorm.
	ErrNotFound       = fmt.Errorf("not found: %w", gorm.ErrRecordNotFound)
	ErrInvalidSpecies = errors.New("invalid species")
	ErrInvalidSession = errors.New("invalid session")
)

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Bat struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Genus       string `gorm:"uniqueIndex:idx_bat_binomial,priority:1" json:"genus"`
	Species     string `gorm:"uniqueIndex:idx_bat_binomial,priority:2" json:"species"`
	Notes       string `json:"notes"`
	CommonNames []BatCommonName `gorm:"constraint:OnDelete:CASCADE"`
	Tags        []BatTag        `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BatCommonName struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	BatID     uint   `gorm:"index:idx_common_bat"`
	Name      string `json:"name"`
	SortIndex int    `json:"sort_index"`
}

type BatTag struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	BatID     uint   `gorm:"index:idx_tag_bat"`
	Tag       string `gorm:"index:idx_tag_text" json:"tag"`
	SortIndex int    `json:"sort_index"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"index:idx_session_name" json:"name"`
	Location  string    `json:"location"`
	StartDate time.Time `gorm:"index:idx_session_start" json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time
}

type Recording struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	SessionID  string    `gorm:"type:varchar(36);index:idx_recording_session" json:"session_id"`
	FileName   string    `json:"file_name"`
	StartTime  time.Time `json:"start_time"`
	DurationMs int       `json:"duration_ms"`
	Notes      string    `json:"notes"`
	Segments   []Segment `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

type Segment struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	RecordingID   string `gorm:"type:varchar(36);index:idx_segment_recording" json:"recording_id"`
	StartMs       int64  `json:"start_ms"`
	EndMs         int64  `json:"end_ms"`
	Comment       string `json:"comment"`
	PeakFrequency float64 `json:"peak_frequency_hz"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("BATLOG_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.NewGormAdapter(logger.GetLogger().Module("storage"), 200*time.Millisecond),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY under concurrent imports.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Bat{}, &BatCommonName{}, &BatTag{}, &Session{}, &Recording{}, &Segment{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ready() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
