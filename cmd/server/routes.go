//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	handle := func(route string, h http.HandlerFunc) {
		if s.metrics != nil {
			mux.Handle(route, s.metrics.Instrument(route, h))
			return
		}
		mux.Handle(route, h)
	}

	// Root endpoint
	handle("/", s.handleRoot)

	// Health endpoints
	handle("/health", s.handleHealth)
	handle("/api/health/metrics", s.handleHealthMetrics)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	// Reference data
	handle("/api/species", s.handleSpeciesCollection)
	handle("/api/species/", s.handleSpeciesItem)

	// Matching and summaries
	handle("/api/match", s.handleMatch)
	handle("/api/summarize", s.handleSummarizeRoute)

	// Sessions
	handle("/api/sessions", s.handleSessionCollection)
	handle("/api/sessions/", s.handleSessionItem)

	return corsMiddleware(s.config.AllowedOrigins)(s.loggingMiddleware(mux))
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Add("Vary", "Origin")
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs every request at DEBUG and failed ones at WARN
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= http.StatusInternalServerError {
			s.log.Warnf("%s %s from %s -> %d (%s)", r.Method, r.URL.Path, getClientIP(r), wrapped.statusCode, time.Since(start))
			return
		}
		s.log.Debugf("%s %s from %s -> %d (%s)", r.Method, r.URL.Path, getClientIP(r), wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Infof("BatLog server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /health                    - Health check")
	s.log.Infof("   GET    /api/health/metrics        - Database counts")
	s.log.Infof("   GET    /metrics                   - Prometheus metrics")
	s.log.Infof("   GET    /api/species               - List species")
	s.log.Infof("   POST   /api/species               - Add species")
	s.log.Infof("   GET    /api/species/{id}          - Get species")
	s.log.Infof("   PUT    /api/species/{id}          - Replace species")
	s.log.Infof("   DELETE /api/species/{id}          - Delete species")
	s.log.Infof("   POST   /api/match                 - Find species in a comment")
	s.log.Infof("   POST   /api/summarize             - Summarize label files")
	s.log.Infof("   GET    /api/sessions              - List sessions")
	s.log.Infof("   POST   /api/sessions              - Create session")
	s.log.Infof("   GET    /api/sessions/{id}         - Session with recordings")
	s.log.Infof("   DELETE /api/sessions/{id}         - Delete session")
	s.log.Infof("   GET    /api/sessions/{id}/report  - Session species report")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
