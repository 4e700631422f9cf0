package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Signals end a run.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// ErrTaskTimeout is returned by Group.Run when the task ignores
// cancellation for longer than the group's timeout.
var ErrTaskTimeout = errors.New("shutdown: task did not stop in time")

// WithSignals derives a context cancelled by any of Signals. Call stop to
// restore default signal handling.
func WithSignals(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}

type step struct {
	name string
	fn   func(context.Context) error
}

// Group runs one long-lived task and the cleanup that must follow it.
type Group struct {
	timeout time.Duration

	mu    sync.Mutex
	steps []step
}

// NewGroup returns a Group that allows timeout for the task to stop after
// cancellation and, separately, timeout for the cleanup steps.
func NewGroup(timeout time.Duration) *Group {
	return &Group{timeout: timeout}
}

// Defer registers a cleanup step. Steps run last-registered first.
func (g *Group) Defer(name string, fn func(context.Context) error) {
	g.mu.Lock()
	g.steps = append(g.steps, step{name, fn})
	g.mu.Unlock()
}

// Run calls task with a context that ends on parent cancellation or a
// signal. Once task returns, or fails to return within the timeout after
// cancellation, every step runs. The task error and step errors are joined.
func (g *Group) Run(parent context.Context, task func(context.Context) error) error {
	ctx, stop := WithSignals(parent)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- task(ctx) }()

	var taskErr error
	select {
	case taskErr = <-done:
	case <-ctx.Done():
		select {
		case taskErr = <-done:
		case <-time.After(g.timeout):
			taskErr = ErrTaskTimeout
		}
	}
	return errors.Join(taskErr, g.cleanup())
}

func (g *Group) cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	g.mu.Lock()
	steps := append([]step(nil), g.steps...)
	g.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", steps[i].name, err))
		}
	}
	return errors.Join(errs...)
}
