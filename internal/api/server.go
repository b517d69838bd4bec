package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/dgallion1/promark/internal/config"
	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/dropzone"
	"github.com/dgallion1/promark/internal/metrics"
	"github.com/dgallion1/promark/internal/pipeline"
	"github.com/dgallion1/promark/internal/render"
)

// Server is the HTTP API the editor page talks to.
type Server struct {
	router       chi.Router
	state        *document.State
	orchestrator *pipeline.Orchestrator
	dropzone     *dropzone.Controller
	renderer     *render.Renderer
	outliner     *render.Outliner
	gatherer     prometheus.Gatherer
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. gatherer backs /metrics
// and may be nil.
func NewServer(state *document.State, orch *pipeline.Orchestrator, dz *dropzone.Controller, gatherer prometheus.Gatherer, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		state:        state,
		orchestrator: orch,
		dropzone:     dz,
		renderer:     render.NewRenderer(),
		outliner:     render.NewOutliner(),
		gatherer:     gatherer,
		metrics:      m,
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
	r.Use(RequestLogger(s.log, s.metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/document", s.handleGetDocument)
		r.Put("/document/content", s.handleSetContent)
		r.Post("/document/upload", s.handleUpload)
		r.Post("/document/clear", s.handleClear)
		r.Get("/document/events", s.handleEvents)

		r.Get("/preview", s.handlePreview)
		r.Get("/outline", s.handleOutline)

		r.Get("/drag", s.handleDragState)
		r.Post("/drag/enter", s.handleDragEnter)
		r.Post("/drag/over", s.handleDragOver)
		r.Post("/drag/leave", s.handleDragLeave)
		r.Post("/drag/drop", s.handleDrop)
		r.Get("/ingest/{jobID}/status", s.handleIngestStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"revision":    s.state.Snapshot().Revision,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
