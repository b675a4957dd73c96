// Package server provides the HTTP API for Horitsu.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/answer"
	"github.com/hyperjump/horitsu/internal/config"
	"github.com/hyperjump/horitsu/internal/corpus"
	"github.com/hyperjump/horitsu/internal/ingest"
	"github.com/hyperjump/horitsu/internal/retrieval"
	"github.com/hyperjump/horitsu/internal/watcher"
)

// Server is the HTTP server for the Horitsu API.
type Server struct {
	retriever   *retrieval.Retriever
	synthesizer *answer.Synthesizer
	store       corpus.Store
	ingestor    *ingest.Ingestor
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server

	// watch is optional; when nil the watch endpoints respond 501.
	watch      *watcher.Watcher
	configPath string
	configMu   sync.Mutex
}

// NewServer creates a server with the given dependencies. ingestor may be
// nil to disable the ingest endpoint.
func NewServer(
	retriever *retrieval.Retriever,
	synthesizer *answer.Synthesizer,
	store corpus.Store,
	ingestor *ingest.Ingestor,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		retriever:   retriever,
		synthesizer: synthesizer,
		store:       store,
		ingestor:    ingestor,
		config:      cfg,
		logger:      logger,
	}
}

// SetWatcher enables the watch directory endpoints. configPath, when
// non-empty, is where directory changes are persisted.
func (s *Server) SetWatcher(w *watcher.Watcher, configPath string) {
	s.watch = w
	s.configPath = configPath
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/chunks/{id}", s.handleGetChunk)
	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
