// Package runner launches the external audio tools as child processes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"soundblast/internal/apperr"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// StreamPolicy decides where a child stream goes.
type StreamPolicy int

const (
	// Capture buffers the stream and returns it in ExitResult.
	Capture StreamPolicy = iota
	// Inherit passes the stream through to the host's standard streams.
	Inherit
	// Discard drops the stream.
	Discard
)

func (p StreamPolicy) String() string {
	switch p {
	case Capture:
		return "capture"
	case Inherit:
		return "inherit"
	case Discard:
		return "discard"
	}
	return fmt.Sprintf("StreamPolicy(%d)", int(p))
}

// maxCapture bounds each captured stream. Only the tail is kept.
const maxCapture = 64 << 10

// Command describes one child process invocation.
type Command struct {
	Program string
	Args    []string
	Stdout  StreamPolicy
	Stderr  StreamPolicy
}

// ExitResult reports how a child process ended. A nonzero exit is reported
// here with Success false rather than as an error.
type ExitResult struct {
	Success  bool
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Diagnostic returns the captured stderr, trimmed.
func (r ExitResult) Diagnostic() string {
	return string(bytes.TrimSpace(r.Stderr))
}

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (ExitResult, error)
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithStreams overrides the writers used for Inherit. Defaults are os.Stdout
// and os.Stderr.
func WithStreams(stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// ExecRunner implements Runner with os/exec. Cancelling the context kills the
// child.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns a runner that inherits the process streams.
func NewExecRunner(logger zerolog.Logger, opts ...Option) *ExecRunner {
	r := &ExecRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    logger.With().Str("component", "runner").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts cmd and waits for it. It fails with ProcessSpawn when the program
// cannot be started and with ToolFailure when ctx ends first.
func (r *ExecRunner) Run(ctx context.Context, c Command) (ExitResult, error) {
	var stdout, stderr tailBuffer
	stdout.max, stderr.max = maxCapture, maxCapture

	cmd := commandContext(ctx, c.Program, c.Args...) //nolint:gosec
	cmd.Stdout = r.sink(c.Stdout, &stdout, r.stdout)
	cmd.Stderr = r.sink(c.Stderr, &stderr, r.stderr)
	// Bounds the wait for copy goroutines after the child has been killed.
	cmd.WaitDelay = 5 * time.Second

	log := r.log.With().Str("program", c.Program).Logger()
	log.Debug().Strs("args", c.Args).Stringer("stdout", c.Stdout).Stringer("stderr", c.Stderr).Msg("starting process")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ExitResult{}, apperr.Wrapf(apperr.KindProcessSpawn, "runner.start", fmt.Sprintf("cannot start %s", c.Program), err)
	}

	waitErr := cmd.Wait()
	res := ExitResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warn().Err(ctxErr).Dur("duration", res.Duration).Msg("process interrupted")
		return res, &apperr.Error{
			Kind:       apperr.KindToolFailure,
			Op:         "runner.wait",
			Msg:        fmt.Sprintf("%s interrupted", c.Program),
			Diagnostic: res.Diagnostic(),
			Err:        ctxErr,
		}
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.Success = true
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, apperr.Wrapf(apperr.KindIO, "runner.wait", fmt.Sprintf("waiting for %s", c.Program), waitErr)
	}

	log.Debug().Bool("success", res.Success).Int("exit_code", res.ExitCode).Dur("duration", res.Duration).Msg("process exited")
	return res, nil
}

func (r *ExecRunner) sink(p StreamPolicy, buf *tailBuffer, inherit io.Writer) io.Writer {
	switch p {
	case Capture:
		return buf
	case Inherit:
		return inherit
	default:
		return nil
	}
}

// LookPath resolves program through PATH. A missing program is a
// ProcessSpawn error.
func LookPath(program string) (string, error) {
	path, err := lookPath(program)
	if err != nil {
		return "", apperr.Wrapf(apperr.KindProcessSpawn, "runner.lookpath", fmt.Sprintf("%s not found", program), err)
	}
	return path, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if t.max > 0 && len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if t.max > 0 && len(t.buf) > t.max {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-t.max:]...)
	}
	return n, nil
}

func (t *tailBuffer) Bytes() []byte {
	if len(t.buf) == 0 {
		return nil
	}
	return t.buf
}
