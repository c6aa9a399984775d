package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/runner"
)

// worker is the processing loop for a single concurrent worker. Every node
// handed to a worker has all dependencies succeeded, which makes the
// Start/Complete transitions below infallible; a transition error means the
// scheduler itself is broken and panics rather than limping on.
func (s *Scheduler) worker(ctx context.Context, readyChan chan *execNode, wg *sync.WaitGroup, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		stepLogger := logger.With("workerID", workerID, "step", n.step.Name, "stepID", n.step.ID)

		if ctx.Err() != nil {
			// Canceled: the step stays pending, and everything downstream
			// of it can never become ready, so account for all of it here.
			stepLogger.Warn("Context canceled, step will not run.")
			if n.settle(wg) {
				s.releaseDependents(n, wg)
			}
			continue
		}

		stepLogger.Debug("Worker picked up step.")
		if err := n.step.Start(); err != nil {
			panic(fmt.Sprintf("scheduler invariant violated: %v", err))
		}

		result := s.runStep(ctx, n)

		if err := n.step.Complete(result.Success, result.Log); err != nil {
			panic(fmt.Sprintf("scheduler invariant violated: %v", err))
		}

		if !result.Success {
			stepLogger.Error("Step failed.", "command", n.step.Command)
			s.blockDependents(ctx, n, wg)
			n.settle(wg)
			continue
		}

		stepLogger.Debug("Step succeeded.")
		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				stepLogger.Debug("Unlocking dependent step.", "dependent", dependent.step.Name)
				readyChan <- dependent
			}
		}
		n.settle(wg)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runStep invokes the external runner, applying the per-step timeout.
func (s *Scheduler) runStep(ctx context.Context, n *execNode) runner.Result {
	runCtx := ctx
	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}
	return s.runner.Run(runCtx, n.step.Command)
}

// blockDependents marks every transitive dependent of a failed step as
// blocked, exactly once each. Blocked nodes were never enqueued, since a step
// with a failed ancestor can never reach a zero dependency count, so the
// Block CAS plus settle fully accounts for them.
func (s *Scheduler) blockDependents(ctx context.Context, n *execNode, wg *sync.WaitGroup) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		reason := fmt.Sprintf("blocked: dependency %q did not succeed\n", n.step.Name)
		if dependent.step.Block(reason) {
			logger.Warn("Blocking dependent step after upstream failure.",
				"step", dependent.step.Name, "failedDependency", n.step.Name)
			dependent.settle(wg)
			s.blockDependents(ctx, dependent, wg)
		}
	}
}

// releaseDependents accounts for every transitive dependent of a step
// skipped on cancellation. Those steps stay pending: a skipped ancestor
// means their dependency count can never reach zero, so no worker will ever
// see them. A node already settled through another skipped or failed
// parent is left alone.
func (s *Scheduler) releaseDependents(n *execNode, wg *sync.WaitGroup) {
	for _, dependent := range n.dependents {
		if dependent.settle(wg) {
			s.releaseDependents(dependent, wg)
		}
	}
}
