package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Step is one instantiated unit of work inside a pipeline. Its status word is
// managed with atomic compare-and-swap so that concurrent workers can never
// start the same step twice; the remaining mutable fields (log, timestamps)
// are guarded by a mutex and only written by the worker that owns the
// in-progress transition.
type Step struct {
	// ID is the process-unique identity minted at instantiation time.
	ID string
	// Name is the human-readable name from the template, used only for
	// dependency wiring and reporting.
	Name string
	// Stage is the descriptive CI/CD phase label.
	Stage Stage
	// Command is the fully substituted command line handed to the runner.
	Command string
	// Dependencies holds the ids of steps that must succeed first.
	Dependencies []string

	state atomic.Int32

	mu          sync.Mutex
	log         string
	startedAt   *time.Time
	completedAt *time.Time
}

// NewStep returns a pending step.
func NewStep(id, name string, stage Stage, command string) *Step {
	return &Step{ID: id, Name: name, Stage: stage, Command: command}
}

// Status atomically reads the step's current status.
func (s *Step) Status() Status {
	return Status(s.state.Load())
}

// Start transitions the step from pending to in-progress and records the
// start time. Calling Start on a non-pending step is a scheduler bug.
func (s *Step) Start() error {
	if !s.state.CompareAndSwap(int32(StatusPending), int32(StatusRunning)) {
		return fmt.Errorf("step %s: cannot start from status %s", s.ID, s.Status())
	}
	now := time.Now().UTC()
	s.mu.Lock()
	s.startedAt = &now
	s.mu.Unlock()
	return nil
}

// Complete transitions an in-progress step to succeeded or failed, appends
// the runner's log output, and records the completion time.
func (s *Step) Complete(success bool, logText string) error {
	target := StatusSucceeded
	if !success {
		target = StatusFailed
	}
	if !s.state.CompareAndSwap(int32(StatusRunning), int32(target)) {
		return fmt.Errorf("step %s: cannot complete from status %s", s.ID, s.Status())
	}
	now := time.Now().UTC()
	s.mu.Lock()
	s.log += logText
	s.completedAt = &now
	s.mu.Unlock()
	return nil
}

// Block moves a pending step to the blocked terminal state. It returns false
// if the step already left pending, which makes it safe to call from
// concurrent failure propagation.
func (s *Step) Block(reason string) bool {
	if !s.state.CompareAndSwap(int32(StatusPending), int32(StatusBlocked)) {
		return false
	}
	now := time.Now().UTC()
	s.mu.Lock()
	s.log += reason
	s.completedAt = &now
	s.mu.Unlock()
	return true
}

// Log returns the accumulated output text.
func (s *Step) Log() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

// StartedAt returns the start timestamp, or nil if the step never started.
func (s *Step) StartedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// CompletedAt returns the completion timestamp, or nil while non-terminal.
func (s *Step) CompletedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt
}
