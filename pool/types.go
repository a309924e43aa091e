package pool

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Task is a unit of deferred work. A worker calls Run exactly once per
// attempt; with a retry policy a failing task may be run again.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts an ordinary function to the Task interface.
type TaskFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f TaskFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// TaskInfo identifies a task to the lifecycle hooks.
//
// Fields:
//   - ID: Monotonic submission id, starting at 1
//   - WorkerID: Index of the worker that claimed the task
//   - Attempt: 1-based attempt number the hook refers to
//   - EnqueuedAt: When the task entered the queue
type TaskInfo struct {
	ID         uint64
	WorkerID   int
	Attempt    int
	EnqueuedAt time.Time
}

// PanicError is returned in place of a task's error when the task panicked.
// The worker that ran it recovers and keeps serving the queue.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: buf[:n]}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v", e.Value)
}

// Unwrap exposes the panic value when the task panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Stats is a point-in-time view of the pool. Completed, Failed and Panicked
// are disjoint: every finished task lands in exactly one of them.
type Stats struct {
	Workers     int
	LiveWorkers int
	Queued      int
	Active      int

	Submitted int64
	Completed int64
	Failed    int64
	Panicked  int64
	Rejected  int64
	Retried   int64

	Closed bool
}

// Outcome classifies how a task finished.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomePanicked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// queuedTask is what actually travels through the shared queue.
type queuedTask struct {
	id         uint64
	task       Task
	enqueuedAt time.Time
}

// completer is implemented by tasks that want the final outcome delivered
// after the worker is done with them, such as the tasks behind Submit.
type completer interface {
	complete(err error)
}
