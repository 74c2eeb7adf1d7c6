// Package shell runs operating system commands on behalf of agents inside a
// restricted sandbox: execution is off by default, commands are tokenized
// without shell interpretation, and every run is bounded by a timeout.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cordonlabs/cordon/logging"
	"github.com/kballard/go-shellquote"
)

// DefaultTimeout bounds a single command execution.
const DefaultTimeout = 30 * time.Second

// Result captures the outcome of one command execution.
type Result struct {
	Command  string `json:"command"`
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

// Options configure a Sandbox.
type Options struct {
	// Enabled gates execution; a disabled sandbox rejects every command.
	Enabled bool
	// Timeout bounds each run. Zero means DefaultTimeout.
	Timeout time.Duration
	// WorkDir is the working directory for commands. Empty means inherit.
	WorkDir string
	Logger  logging.Logger
}

// Sandbox executes commands with the configured restrictions.
// Safe for concurrent use.
type Sandbox struct {
	opts Options
}

// NewSandbox creates a sandbox. Execution stays disabled until opted in
// through Options or SetEnabled.
func NewSandbox(optFns ...func(o *Options)) *Sandbox {
	opts := Options{
		Timeout: DefaultTimeout,
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Sandbox{opts: opts}
}

// Enabled reports whether the sandbox will execute commands.
func (s *Sandbox) Enabled() bool { return s.opts.Enabled }

// SetEnabled toggles command execution. Intended for setup, not mid-flight use.
func (s *Sandbox) SetEnabled(enabled bool) { s.opts.Enabled = enabled }

// Run executes a single command line and returns its captured output.
// The command is split into argv without invoking a shell, so pipes,
// redirects and substitutions are not interpreted.
func (s *Sandbox) Run(ctx context.Context, command string) Result {
	result := Result{Command: command, ExitCode: -1}

	if !s.opts.Enabled {
		result.Error = "command execution is disabled"
		return result
	}

	command = strings.TrimSpace(command)
	if command == "" {
		result.Error = "empty command"
		return result
	}

	argv, err := shellquote.Split(command)
	if err != nil {
		result.Error = fmt.Sprintf("invalid command syntax: %v", err)
		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if s.opts.WorkDir != "" {
		cmd.Dir = s.opts.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.opts.Logger.Debug("shell.run.start", "command", command)
	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Error = fmt.Sprintf("command timed out after %s", s.opts.Timeout)
		s.opts.Logger.Warn("shell.run.timeout", "command", command, "timeout", s.opts.Timeout.String())
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Error = err.Error()
		s.opts.Logger.Warn("shell.run.failed", "command", command, "exit_code", result.ExitCode, "error", err.Error())
	default:
		result.Success = true
		result.ExitCode = 0
		s.opts.Logger.Info("shell.run.success", "command", command, "duration_ms", duration.Milliseconds())
	}

	return result
}

// Output renders a result the way it is surfaced to models and task output:
// stdout when the command succeeded, otherwise the error plus whatever the
// command managed to write to stdout and stderr before failing.
func (r Result) Output() string {
	if r.Success {
		return r.Stdout
	}

	var sb strings.Builder
	if r.Error != "" {
		sb.WriteString(r.Error)
	}
	for _, captured := range []string{r.Stdout, r.Stderr} {
		if captured == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(captured)
	}
	return sb.String()
}
