package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_CapturesCombinedOutput(t *testing.T) {
	t.Parallel()
	r := NewShell("")

	result := r.Run(context.Background(), "echo out && echo err 1>&2")

	require.True(t, result.Success)
	assert.Contains(t, result.Log, "out")
	assert.Contains(t, result.Log, "err")
}

func TestShell_NonZeroExitFails(t *testing.T) {
	t.Parallel()
	r := NewShell("")

	result := r.Run(context.Background(), "echo partial && exit 3")

	assert.False(t, result.Success)
	assert.Contains(t, result.Log, "partial")
	assert.Contains(t, result.Log, "error:")
}

func TestShell_RunsInConfiguredDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r := NewShell(dir)

	result := r.Run(context.Background(), "pwd")

	require.True(t, result.Success)
	assert.Contains(t, result.Log, dir)
}

func TestShell_TimeoutKillsProcess(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := NewShell("")

	result := r.Run(ctx, "sleep 5")

	assert.False(t, result.Success)
}

func TestFunc_AdaptsClosures(t *testing.T) {
	t.Parallel()
	var got string
	r := Func(func(ctx context.Context, command string) Result {
		got = command
		return Result{Success: true, Log: "done"}
	})

	result := r.Run(context.Background(), "anything")

	assert.True(t, result.Success)
	assert.Equal(t, "anything", got)
}
