package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"deploy-planner/internal/domain"

	"go.uber.org/zap"
)

const (
	// maxCapturedBytes bounds the stdout/stderr kept per stream
	maxCapturedBytes = 1 << 20
	// waitDelay bounds how long orphaned children may hold the output pipes after a kill
	waitDelay = 2 * time.Second
)

// Executor runs shell command lines with `sh -c`
type Executor struct {
	shell  string
	logger *zap.Logger
}

// NewExecutor creates a new command executor
func NewExecutor(logger *zap.Logger) *Executor {
	return &Executor{
		shell:  "sh",
		logger: logger,
	}
}

// Run executes cmd.Line in cmd.Dir. A deadline yields *domain.TimeoutError and a
// non-zero exit yields *domain.NonZeroExitError; in both cases the captured output
// is still returned.
func (e *Executor) Run(ctx context.Context, cmd domain.Command) (*domain.CommandResult, error) {
	if cmd.Line == "" {
		return nil, domain.InvalidInputf("command line is required")
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	process := exec.CommandContext(ctx, e.shell, "-c", cmd.Line)
	process.Dir = cmd.Dir
	process.WaitDelay = waitDelay
	process.Env = append(os.Environ(), envList(cmd.Env)...)

	var stdout, stderr bytes.Buffer
	process.Stdout = &limitedWriter{buf: &stdout, limit: maxCapturedBytes}
	process.Stderr = &limitedWriter{buf: &stderr, limit: maxCapturedBytes}

	e.logger.Debug("Running command",
		zap.String("command", cmd.Line),
		zap.String("dir", cmd.Dir),
		zap.Duration("timeout", cmd.Timeout))

	start := time.Now()
	err := process.Run()
	result := &domain.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: process.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Warn("Command timed out", zap.String("command", cmd.Line), zap.Duration("timeout", cmd.Timeout))
		return result, &domain.TimeoutError{Command: cmd.Line, Timeout: cmd.Timeout}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &domain.NonZeroExitError{Command: cmd.Line, ExitCode: result.ExitCode, Stderr: result.Stderr}
		}
		return result, fmt.Errorf("failed to run %q: %w", cmd.Line, err)
	}

	e.logger.Debug("Command finished",
		zap.String("command", cmd.Line),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// limitedWriter drops output beyond limit while reporting full writes,
// so a chatty command never blocks on a full pipe.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if remaining := w.limit - w.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			w.buf.Write(p[:remaining])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
