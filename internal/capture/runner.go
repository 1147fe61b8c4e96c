package capture

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec, bounding each call by Timeout.
type ExecRunner struct {
	Timeout time.Duration
	Logger  zerolog.Logger
}

var _ CommandRunner = (*ExecRunner)(nil)

// NewExecRunner returns a runner that kills commands running longer than timeout.
// A zero timeout leaves commands unbounded.
func NewExecRunner(timeout time.Duration, logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run executes name with args. A non-zero exit is returned as an error that
// carries the command's stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r.Logger.Debug().
		Str("cmd", name).
		Strs("args", args).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("command finished")

	if err == nil {
		return stdout.String(), nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout.String(), errors.Wrapf(err, "%s timed out after %s", name, r.Timeout)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return stdout.String(), errors.Wrapf(err, "%s: %s", name, msg)
	}
	return stdout.String(), errors.Wrap(err, name)
}
