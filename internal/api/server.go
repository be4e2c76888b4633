package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lyricast/lyricast/internal/cleanup"
	"github.com/lyricast/lyricast/internal/config"
	"github.com/lyricast/lyricast/internal/pipeline"
)

// Server is the HTTP API server for lyricast.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	cleanupStats *cleanup.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, stats *cleanup.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		cleanupStats: stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.LyricastAPIKey, s.log))

		r.Post("/api/songs", s.handleSubmitSong)
		r.Post("/api/songs/batch", s.handleBatchSubmit)
		r.Get("/api/songs/{jobID}/status", s.handleSongStatus)
		r.Get("/api/songs/{jobID}/slides", s.handleSongSlides)

		r.Post("/api/decks", s.handleExportDeck)

		r.Get("/api/stats/cleanup", s.handleCleanupStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
