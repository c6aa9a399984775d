// Package scheduler drives an instantiated pipeline to completion. Steps
// whose dependencies have all succeeded are fed to a bounded worker pool; a
// failed step marks its transitive dependents blocked while independent
// branches keep executing, so the final report shows the outcome of every
// step rather than just the first failure.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/runner"
)

// ErrStalled reports that the run ended with unresolved steps while nothing
// was in flight and the context was not canceled. Instantiation-time cycle
// validation should make this unreachable; the check stays as a backstop so
// a scheduling bug surfaces as a distinct error instead of a silent hang.
var ErrStalled = errors.New("pipeline stalled with unresolved steps")

// DefaultWorkerCount bounds concurrency when the caller does not choose one.
const DefaultWorkerCount = 4

// Scheduler executes pipelines against a StepRunner. A single Scheduler is
// safe for concurrent use; all per-run state lives on the stack of Execute.
type Scheduler struct {
	runner      runner.StepRunner
	workerCount int
	stepTimeout time.Duration
}

// New returns a scheduler with the given concurrency bound and per-step
// timeout. workerCount <= 0 selects DefaultWorkerCount; stepTimeout 0
// disables the timeout.
func New(r runner.StepRunner, workerCount int, stepTimeout time.Duration) *Scheduler {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Scheduler{runner: r, workerCount: workerCount, stepTimeout: stepTimeout}
}

// execNode is the scheduler's per-run bookkeeping for one step: the unmet
// dependency counter that gates readiness and the reverse edges used to
// unlock or block dependents.
type execNode struct {
	step       *pipeline.Step
	depCount   atomic.Int32
	dependents []*execNode
	// accounted guards the WaitGroup decrement. The block and cancel paths
	// can race with each other but never with execution: a step with a
	// failed or skipped ancestor can never have entered the ready channel.
	accounted atomic.Bool
}

// settle decrements the WaitGroup exactly once per node. It reports whether
// this call was the one that did it, which gates the transitive walks below.
func (n *execNode) settle(wg *sync.WaitGroup) bool {
	if n.accounted.CompareAndSwap(false, true) {
		wg.Done()
		return true
	}
	return false
}

// Execute runs the pipeline to a terminal status and returns it. On context
// cancellation, in-flight steps finish, no new step starts, untouched steps
// remain pending, and the context error is returned alongside the failed
// status.
func (s *Scheduler) Execute(ctx context.Context, p *pipeline.Pipeline) (pipeline.Status, error) {
	logger := ctxlog.FromContext(ctx)

	if err := p.Start(); err != nil {
		return p.Status(), err
	}

	steps := p.Steps()
	nodes := make(map[string]*execNode, len(steps))
	for _, st := range steps {
		nodes[st.ID] = &execNode{step: st}
	}
	for _, st := range steps {
		n := nodes[st.ID]
		n.depCount.Store(int32(len(st.Dependencies)))
		for _, depID := range st.Dependencies {
			// Instantiation guarantees every dependency id exists.
			dep := nodes[depID]
			dep.dependents = append(dep.dependents, n)
		}
	}

	readyChan := make(chan *execNode, len(steps))
	var wg sync.WaitGroup
	wg.Add(len(steps))

	rootCount := 0
	for _, st := range steps {
		if n := nodes[st.ID]; n.depCount.Load() == 0 {
			readyChan <- n
			rootCount++
		}
	}
	logger.Debug("Scheduler found root steps.", "pipeline", p.ID, "roots", rootCount)

	for i := 0; i < s.workerCount; i++ {
		go s.worker(ctx, readyChan, &wg, i)
	}

	wg.Wait()
	close(readyChan)

	return s.finish(ctx, p)
}

// finish derives the terminal pipeline status from step outcomes.
func (s *Scheduler) finish(ctx context.Context, p *pipeline.Pipeline) (pipeline.Status, error) {
	allSucceeded := true
	pendingLeft := false
	for _, st := range p.Steps() {
		switch st.Status() {
		case pipeline.StatusSucceeded:
		case pipeline.StatusPending:
			allSucceeded = false
			pendingLeft = true
		default:
			allSucceeded = false
		}
	}

	if err := ctx.Err(); err != nil {
		// Canceled runs fail; untouched steps stay pending so the caller
		// can see exactly which steps never ran.
		_ = p.Complete(pipeline.StatusFailed)
		return pipeline.StatusFailed, err
	}
	if pendingLeft {
		_ = p.Complete(pipeline.StatusFailed)
		return pipeline.StatusFailed, ErrStalled
	}
	if allSucceeded {
		_ = p.Complete(pipeline.StatusSucceeded)
		return pipeline.StatusSucceeded, nil
	}
	_ = p.Complete(pipeline.StatusFailed)
	return pipeline.StatusFailed, nil
}
