// Package deploy drives the external ct CLI: deploying patterns, inspecting
// deployed charms and linking their fields.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds a single CLI invocation
const DefaultCommandTimeout = 5 * time.Minute

// Command is one subprocess invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the parent environment
	Env []string
}

// String renders the command line for logs and errors
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the captured outcome of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit status
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Combined returns stdout followed by stderr
func (r Result) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	}
	out := r.Stdout
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out + r.Stderr
}

// Runner executes commands. A non-zero exit is reported through
// Result.ExitCode; the error is reserved for commands that could not run to
// completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecRunner creates a runner; a zero timeout uses DefaultCommandTimeout
func NewExecRunner(timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{timeout: timeout, logger: logger}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	r.logger.Debug("command finished",
		zap.String("cmd", c.String()),
		zap.String("dir", c.Dir),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if ctx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("%s: timed out after %v", c.Name, r.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", c.Name, err)
	}
	return result, nil
}
