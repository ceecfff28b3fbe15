// Package server exposes the scoring engine over HTTP JSON. The payload
// shape mirrors the dashboard contract: a summaries list (latest week per
// project) and a series list (full per-week history per project).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pulseboard/internal/config"
	"pulseboard/internal/ingest"
	"pulseboard/internal/scoring"

	"github.com/rs/zerolog/log"
)

// Server holds the HTTP boundary state. Scoring itself is stateless; every
// request re-reads the snapshot table and recomputes from scratch.
type Server struct {
	cfg *config.AppConfig
}

func New(cfg *config.AppConfig) *Server {
	return &Server{cfg: cfg}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/thresholds", s.handleThresholds)

	return mux
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleThresholds exposes the documented default threshold map, e.g. for a
// configuration UI. Read-only metadata, not a scoring operation.
func (s *Server) handleThresholds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scoring.DefaultThresholds())
}

// handleData scores the snapshot table and returns summaries plus series.
// Query parameters act as per-request threshold overrides on top of the
// configured thresholds; unparseable values are ignored per-key.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snapshots, err := ingest.LoadCSV(s.cfg.SnapshotPath)
	if err != nil {
		log.Error().Err(err).Str("path", s.cfg.SnapshotPath).Msg("Failed to load snapshots")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load snapshot data"})
		return
	}

	overrides := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			overrides[key] = vals[0]
		}
	}
	th := s.cfg.Thresholds.With(overrides)

	results := scoring.Score(snapshots, th)
	writeJSON(w, http.StatusOK, BuildPayload(results))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
