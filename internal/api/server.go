// Package api exposes the engine over HTTP: template listing, pipeline
// instantiation, execution, and status reporting.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vk/pipewright/internal/engine"
)

// Server wraps the engine with an HTTP surface.
type Server struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewServer returns a server around the given engine.
func NewServer(eng *engine.Engine, logger *slog.Logger) *Server {
	return &Server{engine: eng, logger: logger}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Get("/{templateID}", s.handleGetTemplate)
		r.Post("/{templateID}/pipelines", s.handleInstantiate)
	})

	r.Route("/pipelines", func(r chi.Router) {
		r.Get("/", s.handleListPipelines)
		r.Get("/{pipelineID}", s.handleGetPipeline)
		r.Post("/{pipelineID}/executions", s.handleExecute)
	})

	return r
}

// ListenAndServe runs the HTTP server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info("API server starting.", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
