// Package testutil holds shared helpers for the engine's test suites.
package testutil

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vk/pipewright/internal/runner"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// ExecutionRecord captures when a fake runner invocation started and ended.
type ExecutionRecord struct {
	Command string
	Start   time.Time
	End     time.Time
}

// FakeRunner is a StepRunner for tests. It records the timing of every
// invocation and fails commands containing any configured marker.
type FakeRunner struct {
	mu       sync.Mutex
	failOn   []string
	delay    time.Duration
	records  []ExecutionRecord
	inFlight int
	maxSeen  int
}

// NewFakeRunner returns a runner where every command succeeds instantly.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// FailOn makes commands containing marker report failure.
func (f *FakeRunner) FailOn(marker string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn = append(f.failOn, marker)
	return f
}

// WithDelay makes every invocation take at least d.
func (f *FakeRunner) WithDelay(d time.Duration) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Run implements runner.StepRunner.
func (f *FakeRunner) Run(ctx context.Context, command string) runner.Result {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	start := time.Now()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	end := time.Now()

	f.mu.Lock()
	f.inFlight--
	f.records = append(f.records, ExecutionRecord{Command: command, Start: start, End: end})
	failed := false
	for _, marker := range f.failOn {
		if strings.Contains(command, marker) {
			failed = true
			break
		}
	}
	f.mu.Unlock()

	if ctx.Err() != nil {
		return runner.Result{Success: false, Log: "interrupted: " + ctx.Err().Error()}
	}
	if failed {
		return runner.Result{Success: false, Log: "simulated failure\n"}
	}
	return runner.Result{Success: true, Log: "ok\n"}
}

// Record returns the timing record for the first invocation whose command
// contains marker, or nil.
func (f *FakeRunner) Record(marker string) *ExecutionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if strings.Contains(f.records[i].Command, marker) {
			return &f.records[i]
		}
	}
	return nil
}

// Invocations returns how many times Run was called.
func (f *FakeRunner) Invocations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// MaxConcurrency returns the highest number of simultaneous Run calls seen.
func (f *FakeRunner) MaxConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}
