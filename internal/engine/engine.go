// Package engine is the service facade over templates, pipelines, and the
// scheduler. It replaces ambient global registries with an explicit value
// whose lifetime is tied to the owning process: every operation takes the
// engine as its receiver and a context for logging and cancellation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/runner"
	"github.com/vk/pipewright/internal/scheduler"
	"github.com/vk/pipewright/internal/store"
	"github.com/vk/pipewright/internal/template"
)

var (
	// ErrTemplateNotFound is returned for instantiation against an unknown
	// template id or name. No partial pipeline state is created.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrPipelineNotFound is returned for execution or lookup of an
	// unknown pipeline id.
	ErrPipelineNotFound = errors.New("pipeline not found")
)

// Config carries the engine's tunables.
type Config struct {
	// WorkerCount bounds step concurrency per pipeline run.
	WorkerCount int
	// StepTimeout limits each step's runner invocation; 0 disables it.
	StepTimeout time.Duration
	// Strict controls instantiation strictness (dangling dependencies,
	// unresolved placeholders). Zero value is the permissive legacy policy.
	Strict template.Options
}

// Engine owns the template and pipeline registries and the scheduler.
type Engine struct {
	templates *store.TemplateStore
	pipelines *store.PipelineStore
	sched     *scheduler.Scheduler
	strict    template.Options
}

// New wires an engine around the given step runner.
func New(r runner.StepRunner, cfg Config) *Engine {
	return &Engine{
		templates: store.NewTemplateStore(),
		pipelines: store.NewPipelineStore(),
		sched:     scheduler.New(r, cfg.WorkerCount, cfg.StepTimeout),
		strict:    cfg.Strict,
	}
}

// AddTemplate registers a template for later instantiation.
func (e *Engine) AddTemplate(t *template.Template) {
	e.templates.Put(t)
}

// Template looks a template up by id, falling back to name. The fallback
// keeps CLI usage ergonomic: names are stable across restarts, ids are not.
func (e *Engine) Template(idOrName string) (*template.Template, error) {
	if t, ok := e.templates.Get(idOrName); ok {
		return t, nil
	}
	if t, ok := e.templates.GetByName(idOrName); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, idOrName)
}

// Templates lists all registered templates in registration order.
func (e *Engine) Templates() []*template.Template {
	return e.templates.List()
}

// Instantiate creates a pipeline from the named template and returns its id.
func (e *Engine) Instantiate(ctx context.Context, templateIDOrName, subjectID, version string, variables map[string]string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	t, err := e.Template(templateIDOrName)
	if err != nil {
		return "", err
	}

	p, err := t.Instantiate(subjectID, version, variables, e.strict)
	if err != nil {
		return "", fmt.Errorf("instantiating template %q: %w", t.Name, err)
	}

	e.pipelines.Put(p)
	logger.Info("Pipeline instantiated.",
		"pipeline", p.ID, "template", t.Name, "subject", subjectID, "version", version, "steps", p.Len())
	return p.ID, nil
}

// Execute drives the pipeline to a terminal status.
func (e *Engine) Execute(ctx context.Context, pipelineID string) (pipeline.Status, error) {
	logger := ctxlog.FromContext(ctx)

	p, ok := e.pipelines.Get(pipelineID)
	if !ok {
		return pipeline.StatusPending, fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineID)
	}

	logger.Info("Pipeline execution starting.", "pipeline", p.ID, "template", p.TemplateName)
	status, err := e.sched.Execute(ctx, p)
	logger.Info("Pipeline execution finished.", "pipeline", p.ID, "status", status.String())
	return status, err
}

// Pipeline returns a snapshot report of the given pipeline.
func (e *Engine) Pipeline(pipelineID string) (pipeline.Report, error) {
	p, ok := e.pipelines.Get(pipelineID)
	if !ok {
		return pipeline.Report{}, fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineID)
	}
	return p.Snapshot(), nil
}

// Pipelines returns snapshot reports, optionally filtered by subject id.
func (e *Engine) Pipelines(subjectID string) []pipeline.Report {
	var out []pipeline.Report
	for _, p := range e.pipelines.List(subjectID) {
		out = append(out, p.Snapshot())
	}
	return out
}
