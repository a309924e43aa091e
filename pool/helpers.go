package pool

import (
	"errors"
	"time"

	"github.com/utkarsh5026/threadpool/internal/queue"
)

var (
	// ErrInvalidPoolSize is returned by New when asked for zero (or fewer) workers.
	ErrInvalidPoolSize = errors.New("pool size must be greater than zero")

	// ErrPoolClosed is returned for work submitted after shutdown has begun,
	// and by a second call to Shutdown.
	ErrPoolClosed = errors.New("pool closed")

	// ErrQueueFull is returned when a bounded queue has no room left.
	ErrQueueFull = errors.New("task queue full")

	// ErrNilTask is returned when Execute is handed a nil task.
	ErrNilTask = errors.New("nil task")

	// ErrShutdownTimeout is returned when workers did not finish draining
	// within the timeout passed to Shutdown. They keep running afterwards.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")
)

// translateQueueErr maps queue errors onto the pool's public errors.
func translateQueueErr(err error) error {
	switch {
	case errors.Is(err, queue.ErrClosed):
		return ErrPoolClosed
	case errors.Is(err, queue.ErrFull):
		return ErrQueueFull
	default:
		return err
	}
}

// waitUntil blocks until d is closed or the timeout elapses.
// A timeout <= 0 waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
