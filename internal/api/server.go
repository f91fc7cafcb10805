package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Batipro56920/batipro/internal/config"
	"github.com/Batipro56920/batipro/internal/pipeline"
	"github.com/Batipro56920/batipro/internal/store"
)

// Server is the HTTP API server for the devis import service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        st,
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
		r.Use(AuthMiddleware(s.cfg.BatiproAPIKey, s.log))

		r.Post("/api/devis/import", s.handleImport)
		r.Post("/api/devis/upload", s.handleUpload)
		r.Post("/api/devis/import/batch", s.handleBatchImport)
		r.Get("/api/devis/import/{jobID}/status", s.handleImportStatus)

		r.Get("/api/devis/{devisID}/lignes", s.handleListLignes)
		r.Get("/api/devis/{devisID}/outline", s.handleOutline)
		r.Delete("/api/devis/{devisID}/lignes", s.handleDeleteLignes)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		jsonError(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
