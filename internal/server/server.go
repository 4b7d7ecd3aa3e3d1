// Package server exposes the butterfly scanner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/butterfly"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/config"
)

// Config carries the server settings.
type Config struct {
	Port           int
	AuthToken      string
	RequestTimeout time.Duration
	ScanDefaults   config.ScanConfig
}

// Server handles scan requests against a chain source. Every request fetches
// and filters its own copy of the chain; no chain state is shared or cached
// across requests.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	source    chain.Source
	logger    *logrus.Logger
	port      int
	authToken string
	defaults  config.ScanConfig
}

type scanResponse struct {
	ScanID  string             `json:"scan_id"`
	Columns []string           `json:"columns"`
	Results []butterfly.Spread `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a scan server reading chains from source.
func NewServer(cfg Config, source chain.Source, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		source:    source,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
		defaults:  cfg.ScanDefaults,
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(timeout))
	if s.authToken != "" {
		s.router.Use(s.authMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/api/scan", s.handleScan)

	return s
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting scan server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}
	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := validateRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	scanID := uuid.New().String()
	log := s.logger.WithFields(logrus.Fields{
		"scan_id": scanID,
		"symbol":  req.Symbol,
		"expiry":  req.Expiry,
	})

	source := s.source
	if req.CSVPath != "" {
		source = chain.NewCSVSource(req.CSVPath)
	}

	rows, err := source.Fetch(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load options chain")
		status := http.StatusInternalServerError
		if req.CSVPath != "" && errors.Is(err, fs.ErrNotExist) {
			// A bad client-supplied path is the client's problem.
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	results, err := butterfly.Scan(rows, req.params(s.defaults))
	if err != nil {
		log.WithError(err).Error("Scan failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.WithField("candidates", len(results)).Info("Scan complete")

	s.writeJSON(w, http.StatusOK, scanResponse{
		ScanID:  scanID,
		Columns: butterfly.Columns,
		Results: results,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	var schemaErr *chain.SchemaError
	if errors.As(err, &schemaErr) {
		// Schema problems are data errors, not client errors.
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
