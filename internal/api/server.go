package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/config"
	"github.com/reqwire/reqwire/internal/specdoc"
	"github.com/reqwire/reqwire/internal/storage"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	*http.Server
	logger zerolog.Logger
}

// NewServer builds the REST server around an already-open store.
func NewServer(cfg config.Config, store storage.Store, logger zerolog.Logger) (*Server, error) {
	renderer, err := specdoc.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating specification renderer: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:      newRouter(store, renderer, cfg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &Server{Server: server, logger: logger}, nil
}

func newRouter(store storage.Store, renderer *specdoc.Renderer, cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	projects := newProjectHandler(store, logger)
	requirements := newRequirementHandler(store, renderer, logger)
	responder := NewResponder(logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", indexHandler(responder))
		r.Get("/health", healthHandler(responder))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.list())
			r.Post("/", projects.create())
			r.Get("/{id}", projects.get())
			r.Put("/{id}", projects.update())
			r.Delete("/{id}", projects.delete())
			r.Get("/{id}/requirements", projects.listRequirements())
			r.Get("/{id}/specification", requirements.specification())
		})

		r.Route("/requirements", func(r chi.Router) {
			r.Get("/", requirements.list())
			r.Post("/", requirements.create())
			r.Put("/{id}", requirements.update())
			r.Delete("/{id}", requirements.delete())
		})
	})

	return r
}

// healthHandler reports liveness.
func healthHandler(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// indexHandler describes the API surface.
func indexHandler(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, http.StatusOK, map[string]any{
			"name":        "reqwire API",
			"description": "REST API for gathering requirements and generating specifications",
			"endpoints": []map[string]string{
				{"method": "GET", "path": "/api/health", "description": "Health check"},
				{"method": "GET", "path": "/api/projects", "description": "List projects; ?search= filters by name"},
				{"method": "POST", "path": "/api/projects", "description": "Create a project"},
				{"method": "GET", "path": "/api/projects/{id}", "description": "Get a project"},
				{"method": "PUT", "path": "/api/projects/{id}", "description": "Update a project"},
				{"method": "DELETE", "path": "/api/projects/{id}", "description": "Delete a project and its requirements"},
				{"method": "GET", "path": "/api/projects/{id}/requirements", "description": "List a project's requirements"},
				{"method": "GET", "path": "/api/projects/{id}/specification", "description": "Render a specification; ?format=markdown|json, ?section= repeats"},
				{"method": "GET", "path": "/api/requirements", "description": "List all requirements"},
				{"method": "POST", "path": "/api/requirements", "description": "Create a requirement"},
				{"method": "PUT", "path": "/api/requirements/{id}", "description": "Update a requirement"},
				{"method": "DELETE", "path": "/api/requirements/{id}", "description": "Delete a requirement"},
			},
		})
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// Start runs the server, reporting the terminal error to errChannel.
func (s *Server) Start(errChannel chan<- error) {
	s.logger.Info().Str("addr", s.Addr).Msg("api server started")
	errChannel <- s.ListenAndServe()
}

// ShutdownGracefully drains in-flight requests before stopping.
func (s *Server) ShutdownGracefully(timeout time.Duration) {
	s.logger.Info().Msg("shutting down api server")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("api server shutdown")
	}
}
