package runner

import (
	"bytes"
	"context"
	"fmt"

	"os/exec"

	"github.com/vk/pipewright/internal/ctxlog"
)

// Shell executes step commands through `sh -c` on the local machine with
// combined stdout/stderr capture. Context cancellation or deadline expiry
// kills the process and is reported as a failed result.
type Shell struct {
	// Dir is the working directory for commands; empty means the process
	// working directory.
	Dir string
}

// NewShell returns a shell runner rooted at dir.
func NewShell(dir string) *Shell {
	return &Shell{Dir: dir}
}

// Run implements StepRunner.
func (s *Shell) Run(ctx context.Context, command string) Result {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running shell command.", "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = s.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		logger.Debug("Shell command failed.", "command", command, "error", err)
		return Result{
			Success: false,
			Log:     fmt.Sprintf("%s\nerror: %v\n", out.String(), err),
		}
	}
	return Result{Success: true, Log: out.String()}
}
