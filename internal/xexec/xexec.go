package xexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Exit codes reported when the tool never produced one of its own.
const (
	ExitNotFound   = 2 // binary missing from PATH
	ExitUnexpected = 3 // start failure, timeout, signal
)

// ErrTimeout marks a command killed because its deadline passed.
var ErrTimeout = errors.New("command timed out")

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes external commands. Tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// CommandRunner runs commands through os/exec, bounding each invocation by Timeout.
type CommandRunner struct {
	Timeout time.Duration
	Dir     string
}

// NewRunner returns a CommandRunner with the given per-command timeout.
func NewRunner(timeout time.Duration) *CommandRunner {
	return &CommandRunner{Timeout: timeout}
}

// Run executes name with args. A non-zero exit is reported through
// Result.ExitCode with a nil error; err is set only when the command could not
// run to completion (missing binary, timeout), in which case ExitCode holds
// ExitNotFound or ExitUnexpected.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, name, args...)
	// Detached children (screen) may inherit the output pipes.
	c.WaitDelay = time.Second
	if r.Dir != "" {
		c.Dir = r.Dir
	}
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}
	if errors.Is(err, exec.ErrWaitDelay) && c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
		return res, nil
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		res.ExitCode = ExitUnexpected
		return res, fmt.Errorf("%s: %w after %s", name, ErrTimeout, r.Timeout)
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		res.ExitCode = ee.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		res.ExitCode = ExitNotFound
		return res, fmt.Errorf("exec error: %w", err)
	}
	res.ExitCode = ExitUnexpected
	return res, fmt.Errorf("exec error: %w", err)
}
