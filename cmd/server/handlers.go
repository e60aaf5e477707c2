//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/internal/metrics"
	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/batlog/storage"
	"github.com/himanishpuri/BatLog/pkg/logger"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service batlog.Service
	config  *ServerConfig
	log     batlog.Logger
	metrics *metrics.Metrics
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	AllowedOrigins []string
}

// NewServer creates a new server instance. m may be nil, which disables /metrics.
func NewServer(service batlog.Service, config *ServerConfig, m *metrics.Metrics) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().Module("http"),
		metrics: m,
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps service errors to status codes
func (s *Server) respondServiceError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, storage.ErrInvalidSpecies), errors.Is(err, storage.ErrInvalidSession):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorf("%s: %v", what, err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process %s", what))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.log.Warnf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "BatLog API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"healthMetrics": "GET /api/health/metrics",
			"metrics":       "GET /metrics",
			"species":       "GET|POST /api/species",
			"speciesByID":   "GET|PUT|DELETE /api/species/{id}",
			"match":         "POST /api/match",
			"summarize":     "POST /api/summarize",
			"sessions":      "GET|POST /api/sessions",
			"sessionByID":   "GET|DELETE /api/sessions/{id}",
			"sessionReport": "GET /api/sessions/{id}/report",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleHealthMetrics handles GET /api/health/metrics
func (s *Server) handleHealthMetrics(w http.ResponseWriter, r *http.Request) {
	species, err := s.service.ListSpecies()
	if err != nil {
		s.respondServiceError(w, "metrics", err)
		return
	}
	sessions, err := s.service.ListSessions()
	if err != nil {
		s.respondServiceError(w, "metrics", err)
		return
	}

	s.respondJSON(w, http.StatusOK, HealthMetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		SpeciesCount: len(species),
		SessionCount: len(sessions),
	})
}

// handleListSpecies handles GET /api/species
func (s *Server) handleListSpecies(w http.ResponseWriter, r *http.Request) {
	species, err := s.service.ListSpecies()
	if err != nil {
		s.respondServiceError(w, "species", err)
		return
	}

	dtos := make([]SpeciesDTO, len(species))
	for i, sp := range species {
		dtos[i] = speciesDTO(sp)
	}
	s.respondJSON(w, http.StatusOK, ListSpeciesResponse{Species: dtos, Count: len(dtos)})
}

// handleAddSpecies handles POST /api/species
func (s *Server) handleAddSpecies(w http.ResponseWriter, r *http.Request) {
	var req SpeciesDTO
	if !s.decode(w, r, 1<<20, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sp := req.toModel()
	sp.ID = 0
	id, err := s.service.AddSpecies(sp)
	if err != nil {
		s.respondServiceError(w, "species", err)
		return
	}
	sp.ID = id
	s.respondJSON(w, http.StatusCreated, speciesDTO(sp))
}

// handleGetSpecies handles GET /api/species/{id}
func (s *Server) handleGetSpecies(w http.ResponseWriter, r *http.Request, id uint) {
	sp, err := s.service.GetSpecies(id)
	if err != nil {
		s.respondServiceError(w, fmt.Sprintf("species %d", id), err)
		return
	}
	s.respondJSON(w, http.StatusOK, speciesDTO(sp))
}

// handleUpdateSpecies handles PUT /api/species/{id}
func (s *Server) handleUpdateSpecies(w http.ResponseWriter, r *http.Request, id uint) {
	var req SpeciesDTO
	if !s.decode(w, r, 1<<20, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sp := req.toModel()
	sp.ID = id
	if err := s.service.UpdateSpecies(sp); err != nil {
		s.respondServiceError(w, fmt.Sprintf("species %d", id), err)
		return
	}
	s.respondJSON(w, http.StatusOK, speciesDTO(sp))
}

// handleDeleteSpecies handles DELETE /api/species/{id}
func (s *Server) handleDeleteSpecies(w http.ResponseWriter, r *http.Request, id uint) {
	if err := s.service.DeleteSpecies(id); err != nil {
		s.respondServiceError(w, fmt.Sprintf("species %d", id), err)
		return
	}
	s.log.Infof("Deleted species %d", id)
	s.respondJSON(w, http.StatusOK, DeleteResponse{
		Message: "Species deleted successfully",
		ID:      strconv.FormatUint(uint64(id), 10),
	})
}

// handleMatchComment handles POST /api/match
func (s *Server) handleMatchComment(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !s.decode(w, r, 2*MaxCommentLength, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := s.service.MatchComment(req.Comment)
	if err != nil {
		s.respondServiceError(w, "match", err)
		return
	}
	s.respondJSON(w, http.StatusOK, matchResponse(matches))
}

// handleSummarize handles POST /api/summarize. The files are written to a
// scratch directory so the batch runs exactly as it would on disk.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req SummarizeRequest
	if !s.decode(w, r, 2*MaxSummaryBytes, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := os.MkdirTemp(s.config.TempDir, "summarize_")
	if err != nil {
		s.log.Errorf("Failed to create temp dir: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, len(req.Files))
	names := make(map[string]string, len(req.Files))
	for i, f := range req.Files {
		paths[i] = filepath.Join(dir, filepath.Base(f.Name))
		names[paths[i]] = f.Name
		if err := os.WriteFile(paths[i], []byte(f.Content), 0o644); err != nil {
			s.log.Errorf("Failed to save file: %v", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
			return
		}
	}

	report, err := s.service.SummarizeFiles(ctx, paths)
	if err != nil {
		s.respondServiceError(w, "summary", err)
		return
	}
	for _, f := range report.Files {
		f.Path = names[f.Path]
	}
	for _, f := range report.Failed {
		f.Path = names[f.Path]
	}
	for i, p := range report.Skipped {
		report.Skipped[i] = names[p]
	}

	s.log.Infof("Summarized %d file(s), %d species", len(req.Files), report.Totals.Len())
	s.respondJSON(w, http.StatusOK, summaryResponse(report))
}

// handleListSessions handles GET /api/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions()
	if err != nil {
		s.respondServiceError(w, "sessions", err)
		return
	}
	dtos := make([]SessionDTO, len(sessions))
	for i, sess := range sessions {
		dtos[i] = sessionDTO(sess)
	}
	s.respondJSON(w, http.StatusOK, ListSessionsResponse{Sessions: dtos, Count: len(dtos)})
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionDTO
	if !s.decode(w, r, 1<<20, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := req.toModel()
	sess.ID = ""
	id, err := s.service.CreateSession(sess)
	if err != nil {
		s.respondServiceError(w, "session", err)
		return
	}
	sess.ID = id
	s.respondJSON(w, http.StatusCreated, sessionDTO(sess))
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.service.GetSession(id)
	if err != nil {
		s.respondServiceError(w, "session "+id, err)
		return
	}
	recs, err := s.service.ListRecordings(id)
	if err != nil {
		s.respondServiceError(w, "session "+id, err)
		return
	}

	out := SessionDetailResponse{Session: sessionDTO(sess), Recordings: make([]RecordingDTO, len(recs))}
	for i, rec := range recs {
		out.Recordings[i] = recordingDTO(rec)
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteSession(id); err != nil {
		s.respondServiceError(w, "session "+id, err)
		return
	}
	s.log.Infof("Deleted session %s", id)
	s.respondJSON(w, http.StatusOK, DeleteResponse{Message: "Session deleted successfully", ID: id})
}

// handleSessionReport handles GET /api/sessions/{id}/report
func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request, id string) {
	report, err := s.service.SessionReport(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, "session "+id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summaryResponse(report))
}

// handleSpeciesCollection routes requests to /api/species
func (s *Server) handleSpeciesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSpecies(w, r)
	case http.MethodPost:
		s.handleAddSpecies(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSpeciesItem routes requests to /api/species/{id}
func (s *Server) handleSpeciesItem(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/species/")
	if idStr == "" {
		s.respondError(w, http.StatusBadRequest, "Species ID required")
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid species ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetSpecies(w, r, uint(id))
	case http.MethodPut:
		s.handleUpdateSpecies(w, r, uint(id))
	case http.MethodDelete:
		s.handleDeleteSpecies(w, r, uint(id))
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleMatch routes requests to /api/match
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleMatchComment(w, r)
}

// handleSummarizeRoute routes requests to /api/summarize
func (s *Server) handleSummarizeRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleSummarize(w, r)
}

// handleSessionCollection routes requests to /api/sessions
func (s *Server) handleSessionCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSessions(w, r)
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSessionItem routes requests to /api/sessions/{id} and /api/sessions/{id}/report
func (s *Server) handleSessionItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Session ID required")
		return
	}

	switch {
	case sub == "report" && r.Method == http.MethodGet:
		s.handleSessionReport(w, r, id)
	case sub != "":
		http.NotFound(w, r)
	case r.Method == http.MethodGet:
		s.handleGetSession(w, r, id)
	case r.Method == http.MethodDelete:
		s.handleDeleteSession(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
