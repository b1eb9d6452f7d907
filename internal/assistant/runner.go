package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"pkt.systems/nikiai/internal/resolver"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

// Config controls how the assistant process is run.
type Config struct {
	Timeout   time.Duration
	MaxOutput int
}

// Runner executes resolved assistant invocations.
type Runner struct {
	cfg Config
}

// NewRunner constructs a Runner with defaults applied.
func NewRunner(cfg Config) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = schema.DefaultTimeout
	}
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = schema.DefaultMaxOutputBytes
	}
	return &Runner{cfg: cfg}
}

// RunError reports a failed assistant process.
type RunError struct {
	Stderr   string
	ExitCode int
	Signal   string
	Err      error
}

func (e *RunError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("assistant exited with code %d", e.ExitCode)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Run executes inv and returns its stdout, or stderr when stdout is empty.
func (r *Runner) Run(ctx context.Context, inv resolver.Invocation) (string, error) {
	log := pslog.Ctx(ctx)
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.WaitDelay = 2 * time.Second
	if inv.UseStdin {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}
	stdout := newCappedBuffer(r.cfg.MaxOutput, cancel)
	stderr := newCappedBuffer(r.cfg.MaxOutput, cancel)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Info(
		"assistant exec start",
		"mode", inv.Mode,
		"path", inv.Path,
		"args_len", len(inv.Args),
		"workdir", inv.Dir,
		"stdin", inv.UseStdin,
		"prompt_len", len(inv.Stdin),
		"timeout", r.cfg.Timeout,
	)
	started := time.Now()
	err := cmd.Run()
	duration := time.Since(started)

	if stdout.Overflowed() || stderr.Overflowed() {
		log.Warn("assistant exec output overflow", "limit", r.cfg.MaxOutput, "duration_ms", duration.Milliseconds())
		return "", fmt.Errorf("%w (%d bytes)", schema.ErrOutputTooLarge, r.cfg.MaxOutput)
	}
	if err != nil {
		runErr := &RunError{Stderr: stderr.String(), ExitCode: -1, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			runErr.ExitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				runErr.Signal = status.Signal().String()
			}
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			runErr.Err = fmt.Errorf("assistant timed out after %s: %w", r.cfg.Timeout, context.DeadlineExceeded)
		}
		fields := []any{
			"exit_code", runErr.ExitCode,
			"duration_ms", duration.Milliseconds(),
			"stderr_len", stderr.Len(),
			"err", err,
		}
		if runErr.Signal != "" {
			fields = append(fields, "signal", runErr.Signal)
		}
		log.Warn("assistant exec failed", fields...)
		return "", runErr
	}

	log.Info("assistant exec finished", "duration_ms", duration.Milliseconds(), "stdout_len", stdout.Len(), "stderr_len", stderr.Len())
	if stdout.Len() > 0 {
		return stdout.String(), nil
	}
	return stderr.String(), nil
}

// cappedBuffer keeps at most limit bytes and cancels the run once exceeded.
type cappedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	limit      int
	overflowed bool
	onOverflow func()
}

func newCappedBuffer(limit int, onOverflow func()) *cappedBuffer {
	return &cappedBuffer{limit: limit, onOverflow: onOverflow}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.overflowed {
		return len(p), nil
	}
	if remaining := b.limit - b.buf.Len(); len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.overflowed = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflowed
}

func (b *cappedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
