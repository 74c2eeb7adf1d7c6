package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSandbox_Run_Success(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), "echo hello world")

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello world\n", result.Stdout)
	assert.Empty(t, result.Error)
	assert.Equal(t, "hello world\n", result.Output())
}

func TestSandbox_Run_Disabled(t *testing.T) {
	sb := NewSandbox()

	result := sb.Run(context.Background(), "echo hi")

	assert.False(t, result.Success)
	assert.Equal(t, -1, result.ExitCode)
	assert.Equal(t, "command execution is disabled", result.Error)
}

func TestSandbox_Run_EmptyCommand(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), "   ")

	assert.False(t, result.Success)
	assert.Equal(t, "empty command", result.Error)
}

func TestSandbox_Run_Timeout(t *testing.T) {
	sb := NewSandbox(func(o *Options) {
		o.Enabled = true
		o.Timeout = 100 * time.Millisecond
	})

	start := time.Now()
	result := sb.Run(context.Background(), "sleep 5")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out after")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSandbox_Run_NonZeroExit(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), "false")

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
	assert.NotEmpty(t, result.Error)
}

func TestResult_Output_FailureKeepsStdout(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), `sh -c "echo partial progress; echo broke >&2; exit 3"`)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "partial progress\n", result.Stdout)

	out := result.Output()
	assert.Contains(t, out, "exit status 3")
	assert.Contains(t, out, "partial progress")
	assert.Contains(t, out, "broke")
}

func TestSandbox_Run_QuotedArguments(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), `echo "one two"`)

	assert.True(t, result.Success)
	assert.Equal(t, "one two\n", result.Stdout)
}

func TestSandbox_Run_BadSyntax(t *testing.T) {
	sb := NewSandbox(func(o *Options) { o.Enabled = true })

	result := sb.Run(context.Background(), `echo "unterminated`)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid command syntax")
}
