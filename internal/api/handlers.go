package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/engine"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/template"
)

// templateReport is the JSON view of a registered template.
type templateReport struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
	Steps       []stepDefReport   `json:"steps"`
	CreatedAt   time.Time         `json:"created_at"`
}

type stepDefReport struct {
	Name      string   `json:"name"`
	Stage     string   `json:"stage"`
	Command   string   `json:"command"`
	DependsOn []string `json:"depends_on,omitempty"`
}

func toTemplateReport(t *template.Template) templateReport {
	report := templateReport{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Variables:   t.Defaults,
		Steps:       make([]stepDefReport, 0, len(t.Steps)),
		CreatedAt:   t.CreatedAt,
	}
	for _, def := range t.Steps {
		report.Steps = append(report.Steps, stepDefReport{
			Name:      def.Name,
			Stage:     string(def.Stage),
			Command:   def.Command,
			DependsOn: def.DependsOn,
		})
	}
	return report
}

// instantiateRequest is the body of POST /templates/{id}/pipelines.
type instantiateRequest struct {
	SubjectID string            `json:"subject_id"`
	Version   string            `json:"version"`
	Variables map[string]string `json:"variables"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.engine.Templates()
	out := make([]templateReport, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateReport(t))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.engine.Template(chi.URLParam(r, "templateID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTemplateReport(t))
}

func (s *Server) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	var req instantiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if req.SubjectID == "" || req.Version == "" {
		http.Error(w, "subject_id and version are required", http.StatusBadRequest)
		return
	}

	ctx := ctxlog.WithLogger(r.Context(), s.logger)
	pipelineID, err := s.engine.Instantiate(ctx, chi.URLParam(r, "templateID"), req.SubjectID, req.Version, req.Variables)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"pipeline_id": pipelineID})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineID")

	ctx := ctxlog.WithLogger(r.Context(), s.logger)
	status, err := s.engine.Execute(ctx, pipelineID)
	if err != nil && errors.Is(err, engine.ErrPipelineNotFound) {
		s.writeError(w, r, err)
		return
	}
	// Execution errors beyond lookup (stall, cancellation) are reflected in
	// the terminal status; the report endpoint carries the detail.
	s.writeJSON(w, http.StatusOK, map[string]string{
		"pipeline_id": pipelineID,
		"status":      status.String(),
	})
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Pipeline(chi.URLParam(r, "pipelineID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	reports := s.engine.Pipelines(r.URL.Query().Get("subject_id"))
	if reports == nil {
		reports = []pipeline.Report{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response.", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrTemplateNotFound), errors.Is(err, engine.ErrPipelineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, template.ErrDanglingDependency), errors.Is(err, template.ErrCyclicTemplate), errors.Is(err, template.ErrDuplicateStep):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.logger.Error("Request failed.", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
