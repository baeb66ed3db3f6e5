// Package server exposes the ingestion pipeline and stored series over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"PricePulse/internal/config"
	"PricePulse/internal/ingest"
	"PricePulse/internal/store"
)

// Server wraps the HTTP server and its collaborators.
type Server struct {
	cfg    *config.Config
	store  store.Store
	runner *ingest.Runner
	server *http.Server
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(cfg *config.Config, st store.Store, runner *ingest.Runner) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      applyMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	log.Printf("[INFO] HTTP server listening on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
