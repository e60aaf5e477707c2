package batlog

import (
	"context"
	"io"

	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/models"
)

type Service interface {
	AddSpecies(sp models.Species) (uint, error)
	UpdateSpecies(sp models.Species) error
	GetSpecies(id uint) (models.Species, error)
	ListSpecies() ([]models.Species, error)
	DeleteSpecies(id uint) error
	ImportReference(r io.Reader) (ImportStats, error)
	ExportReference(w io.Writer) error

	Matcher() (*tagmatch.Matcher, error)
	MatchComment(comment string) ([]tagmatch.Match, error)
	SummarizeLines(name string, lines []string) (*summary.FileReport, error)
	SummarizeFiles(ctx context.Context, paths []string) (*summary.BatchReport, error)
	SummarizeFolder(ctx context.Context, root string) (*summary.BatchReport, error)

	CreateSession(s models.Session) (string, error)
	GetSession(id string) (models.Session, error)
	ListSessions() ([]models.Session, error)
	DeleteSession(id string) error
	ListRecordings(sessionID string) ([]models.Recording, error)
	ImportRecording(ctx context.Context, sessionID, textPath string) (models.Recording, error)
	SessionReport(ctx context.Context, sessionID string) (*summary.BatchReport, error)

	Close() error
}

// Storage is the reference-data and session store behind a Service.
type Storage interface {
	InsertSpecies(sp models.Species) (uint, error)
	UpdateSpecies(sp models.Species) error
	GetSpeciesByID(id uint) (models.Species, error)
	ListSpecies() ([]models.Species, error)
	DeleteSpeciesByID(id uint) error
	TagSnapshot() ([]models.TagRef, error)

	CreateSession(s models.Session) (string, error)
	GetSession(id string) (models.Session, error)
	ListSessions() ([]models.Session, error)
	DeleteSession(id string) error
	AddRecording(rec models.Recording) (string, error)
	ListRecordings(sessionID string) ([]models.Recording, error)

	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
