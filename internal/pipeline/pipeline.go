// Package pipeline holds the instantiated execution graph: concrete steps
// with resolved dependency ids and per-step state machines, plus the
// pipeline-level status derived from them.
package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Pipeline is a concrete execution graph produced from a template. A
// pipeline exclusively owns its steps; templates may be instantiated into
// many pipelines concurrently, but no step is ever shared between two
// pipelines.
type Pipeline struct {
	ID           string
	TemplateName string
	SubjectID    string
	Version      string

	state     atomic.Int32
	createdAt time.Time

	mu          sync.Mutex
	steps       map[string]*Step
	order       []string // step ids in template declaration order
	startedAt   *time.Time
	completedAt *time.Time
}

// New returns an empty pending pipeline with a fresh id.
func New(templateName, subjectID, version string) *Pipeline {
	return &Pipeline{
		ID:           uuid.NewString(),
		TemplateName: templateName,
		SubjectID:    subjectID,
		Version:      version,
		createdAt:    time.Now().UTC(),
		steps:        make(map[string]*Step),
	}
}

// AddStep registers a step under its id. Declaration order is preserved for
// reporting.
func (p *Pipeline) AddStep(step *Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[step.ID] = step
	p.order = append(p.order, step.ID)
}

// Step returns the step with the given id, or nil.
func (p *Pipeline) Step(id string) *Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps[id]
}

// Steps returns all steps in declaration order.
func (p *Pipeline) Steps() []*Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Step, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.steps[id])
	}
	return out
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

// Status atomically reads the pipeline-level status.
func (p *Pipeline) Status() Status {
	return Status(p.state.Load())
}

// Start transitions the pipeline from pending to in-progress.
func (p *Pipeline) Start() error {
	if !p.state.CompareAndSwap(int32(StatusPending), int32(StatusRunning)) {
		return fmt.Errorf("pipeline %s: cannot start from status %s", p.ID, p.Status())
	}
	now := time.Now().UTC()
	p.mu.Lock()
	p.startedAt = &now
	p.mu.Unlock()
	return nil
}

// Complete moves an in-progress pipeline to the given terminal status.
func (p *Pipeline) Complete(status Status) error {
	if status != StatusSucceeded && status != StatusFailed {
		return fmt.Errorf("pipeline %s: %s is not a valid terminal status", p.ID, status)
	}
	if !p.state.CompareAndSwap(int32(StatusRunning), int32(status)) {
		return fmt.Errorf("pipeline %s: cannot complete from status %s", p.ID, p.Status())
	}
	now := time.Now().UTC()
	p.mu.Lock()
	p.completedAt = &now
	p.mu.Unlock()
	return nil
}

// CreatedAt returns the instantiation timestamp.
func (p *Pipeline) CreatedAt() time.Time {
	return p.createdAt
}

// StartedAt returns the start timestamp, or nil if execution never began.
func (p *Pipeline) StartedAt() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startedAt
}

// CompletedAt returns the completion timestamp, or nil while non-terminal.
func (p *Pipeline) CompletedAt() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completedAt
}
