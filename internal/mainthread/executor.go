// Package mainthread hands work from any goroutine to the single,
// thread-affine automation context.
//
// The platform automation API may only be touched from one OS thread. An
// Executor owns that thread: Run locks the calling goroutine to its thread and
// consumes submitted tasks one at a time, in submission order. Submitters
// block until their task completes or their context expires.
package mainthread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	// ErrTimeout is returned when a task does not complete before the
	// submitter's deadline. The task itself keeps running; it cannot be
	// cancelled once started.
	ErrTimeout = errors.New("automation context timeout")

	// ErrStopped is returned when the executor is not accepting work.
	ErrStopped = errors.New("automation context stopped")
)

// PanicError wraps a panic raised by a task.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("automation task panicked: %v", e.Value)
}

// DefaultQueueSize is the number of tasks that may wait for the automation
// context before submitters block on enqueue.
const DefaultQueueSize = 64

// Executor is a single-consumer FIFO task queue.
type Executor struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
	running  sync.Mutex
	busy     atomic.Bool
	log      *slog.Logger
}

// New creates an executor. A queueSize <= 0 uses DefaultQueueSize.
func New(queueSize int, log *slog.Logger) *Executor {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		tasks:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
		log:     log.With("component", "mainthread"),
	}
}

// Run executes tasks on the calling goroutine until ctx is done or Stop is
// called. Call it from the goroutine that owns the automation thread,
// normally main. Only one Run may be active at a time.
func (e *Executor) Run(ctx context.Context) error {
	if !e.running.TryLock() {
		return errors.New("mainthread: executor already running")
	}
	defer e.running.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer e.Stop()

	e.log.Debug("automation context started")
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("automation context stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-e.stopped:
			return nil
		case task := <-e.tasks:
			e.busy.Store(true)
			task()
			e.busy.Store(false)
		}
	}
}

// Busy reports whether a task is executing right now.
func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// Stop makes Run return and fails all pending and future submissions with
// ErrStopped. It is safe to call more than once.
func (e *Executor) Stop() {
	e.stopOnce.Do(func() { close(e.stopped) })
}

// Do submits fn and blocks until it has run on the automation context.
func (e *Executor) Do(ctx context.Context, fn func()) error {
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				e.log.Error("automation task panicked", "panic", r, "stack", string(stack))
				done <- &PanicError{Value: r, Stack: stack}
			}
		}()
		fn()
		done <- nil
	}

	select {
	case <-e.stopped:
		return ErrStopped
	default:
	}

	select {
	case e.tasks <- task:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return contextErr(ctx)
	}

	select {
	case err := <-done:
		return err
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return contextErr(ctx)
	}
}

func contextErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ctx.Err()
}

// Call runs fn on the automation context and returns its result.
func Call[T any](ctx context.Context, e *Executor, fn func() T) (T, error) {
	result := make(chan T, 1)
	if err := e.Do(ctx, func() { result <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	return <-result, nil
}
