// Package server provides the HTTP API for the Toshokan knowledge base.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/config"
	"github.com/hyperjump/toshokan/internal/ingest"
	"github.com/hyperjump/toshokan/internal/query"
	"github.com/hyperjump/toshokan/internal/store"
)

// Server is the HTTP server for the knowledge-base API.
type Server struct {
	pipeline    *ingest.Pipeline
	engine      *query.Engine
	store       *store.Store
	config      *config.ServerConfig
	modelLoaded bool
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies. modelLoaded feeds
// the health endpoint and reports whether a real embedding model is running.
func NewServer(
	pipeline *ingest.Pipeline,
	engine *query.Engine,
	st *store.Store,
	cfg *config.ServerConfig,
	modelLoaded bool,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:    pipeline,
		engine:      engine,
		store:       st,
		config:      cfg,
		modelLoaded: modelLoaded,
		logger:      logger,
	}
}

// Routes returns the HTTP handler. Split out so tests can drive it through
// httptest without binding a port.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Post("/documents", s.handleAddDocument)
	r.Get("/documents", s.handleListDocuments)
	r.Post("/query", s.handleQuery)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
