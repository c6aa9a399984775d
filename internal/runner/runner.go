// Package runner defines the narrow interface through which the scheduler
// executes a single step's command, plus a local shell implementation. The
// engine is agnostic to what sits behind the interface: a shell, a call into
// an external CD tool, or a simulation in tests.
package runner

import "context"

// Result is the outcome of one command execution. Failure is data, not an
// error: a failing step is a normal pipeline outcome.
type Result struct {
	Success bool
	Log     string
}

// StepRunner executes one step's command and reports the outcome. Run is
// synchronous from the caller's perspective; the scheduler issues many Run
// calls concurrently, so implementations must be safe for concurrent use.
// Implementations should honor ctx cancellation and deadlines, reporting a
// failed Result when interrupted. Retry, if desired, belongs inside the
// runner, not the scheduler.
type StepRunner interface {
	Run(ctx context.Context, command string) Result
}

// Func adapts a plain function to the StepRunner interface.
type Func func(ctx context.Context, command string) Result

// Run implements StepRunner.
func (f Func) Run(ctx context.Context, command string) Result {
	return f(ctx, command)
}
