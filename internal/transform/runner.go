package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/metrics"
)

var ErrRunning = errors.New("a transform run is already in progress")

// TransformError is returned when the job exits non-zero or cannot start.
type TransformError struct {
	Stderr string
	Err    error
}

func (e *TransformError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("transform failed: %v", e.Err)
	}
	return fmt.Sprintf("transform failed: %v: %s", e.Err, e.Stderr)
}

func (e *TransformError) Unwrap() error { return e.Err }

type Result struct {
	Output  string        `json:"output"`
	Elapsed time.Duration `json:"elapsed"`
}

// Runner invokes the external transformation job synchronously. Only one run
// may be active at a time.
type Runner struct {
	command string
	args    []string
	dir     string
	log     *logger.Logger

	running atomic.Bool
}

func NewRunner(cfg config.TransformConfig, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		command: cfg.Command,
		args:    cfg.Args,
		dir:     cfg.Dir,
		log:     log.With("component", "transform"),
	}
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

// Run returns the job's stdout verbatim.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer r.running.Store(false)

	started := time.Now()
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Info("starting transform run", "command", r.command, "args", strings.Join(r.args, " "), "dir", r.dir)
	err := cmd.Run()
	metrics.ObserveTransform(err)
	elapsed := time.Since(started)

	if err != nil {
		r.log.Error("transform run failed", "error", err, "elapsed", elapsed)
		return nil, &TransformError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	r.log.Info("transform run finished", "elapsed", elapsed)
	return &Result{Output: stdout.String(), Elapsed: elapsed}, nil
}
