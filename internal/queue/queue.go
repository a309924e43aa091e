// Package queue implements the single shared task queue used by the pool.
//
// Items are stored in a growable ring buffer (github.com/eapache/queue) and
// guarded by one mutex, so every Pop claims a distinct item. Consumers block
// on a condition variable while the queue is empty. After Close, producers are
// rejected but consumers keep receiving whatever was already queued until the
// queue runs dry.
package queue

import (
	"errors"
	"sync"

	ring "github.com/eapache/queue"
)

var (
	ErrClosed = errors.New("queue is closed")
	ErrFull   = errors.New("queue is full")
)

// Queue is a FIFO queue with blocking consumers and close-then-drain semantics.
// A capacity of zero means the queue is unbounded.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    *ring.Queue
	capacity int
	closed   bool
}

// New creates a queue. capacity <= 0 yields an unbounded queue.
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{
		items:    ring.New(),
		capacity: max(capacity, 0),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail. It never blocks: a closed queue returns
// ErrClosed and a full bounded queue returns ErrFull.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.capacity > 0 && q.items.Length() >= q.capacity {
		return ErrFull
	}

	q.items.Add(v)
	q.notEmpty.Signal()
	return nil
}

// Pop removes the head, blocking while the queue is empty and open.
// ok is false only once the queue is closed and fully drained.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 {
		if q.closed {
			return v, false
		}
		q.notEmpty.Wait()
	}

	return q.items.Remove().(T), true
}

// Close stops accepting new items and wakes every blocked consumer.
// It reports whether this call performed the transition.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.closed = true
	q.notEmpty.Broadcast()
	return true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Cap returns the configured capacity, 0 when unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}
