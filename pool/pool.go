package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/threadpool/internal/queue"
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size worker pool. Its workers share one FIFO queue; every
// task is claimed by exactly one worker and claimed in submission order.
//
// The worker count is fixed by New and never changes. Shutdown is one-way:
// a closed pool rejects new work, runs everything already queued, and joins
// all workers.
type Pool struct {
	config  *poolConfig
	queue   *queue.Queue[*queuedTask]
	workers []*worker

	group errgroup.Group
	done  chan struct{} // closed once every worker has exited

	closed atomic.Bool
	nextID atomic.Uint64
	active atomic.Int64

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	panicked  atomic.Int64
	rejected  atomic.Int64
	retried   atomic.Int64
}

// New starts a pool with size workers. Every worker goroutine has been
// launched and counts as live (Stats().LiveWorkers == size) by the time New
// returns, though one may not yet have been scheduled. Tasks submitted
// before then simply wait in the queue.
//
// Returns ErrInvalidPoolSize when size <= 0.
//
// Example:
//
//	p, err := pool.New(4, pool.WithRetryPolicy(3, 50*time.Millisecond))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	_ = p.ExecuteFunc(func() { fmt.Println("hello from a worker") })
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
	}

	cfg := newConfig(opts...)
	p := &Pool{
		config:  cfg,
		queue:   queue.New[*queuedTask](cfg.queueCapacity),
		workers: make([]*worker, size),
		done:    make(chan struct{}),
	}

	for i := range size {
		p.workers[i] = newWorker(i, p)
	}
	for _, w := range p.workers {
		p.group.Go(w.run)
	}

	go func() {
		_ = p.group.Wait()
		close(p.done)
		debugLog("all %d workers joined", size)
	}()

	debugLog("pool started: workers=%d queueCapacity=%d", size, p.queue.Cap())
	return p, nil
}

// Execute queues task for asynchronous execution and returns immediately.
//
// Returns:
//   - ErrNilTask if task is nil
//   - ErrPoolClosed once Shutdown or Close has been called; the task never runs
//   - ErrQueueFull if the queue is bounded and full
func (p *Pool) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if p.closed.Load() {
		p.reject()
		return ErrPoolClosed
	}

	qt := &queuedTask{
		id:         p.nextID.Add(1),
		task:       task,
		enqueuedAt: time.Now(),
	}

	// Counted before the push so Completed can never overtake Submitted.
	p.submitted.Add(1)
	if err := p.queue.Push(qt); err != nil {
		p.submitted.Add(-1)
		p.reject()
		return translateQueueErr(err)
	}

	p.config.metrics.TaskSubmitted()
	p.config.metrics.QueueDepth(p.queue.Len())
	return nil
}

// ExecuteFunc is Execute for a plain func().
func (p *Pool) ExecuteFunc(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	return p.Execute(TaskFunc(func(context.Context) error {
		fn()
		return nil
	}))
}

// Shutdown stops accepting tasks and waits for the workers to drain the queue
// and exit. Queued tasks are run to completion, never discarded.
//
// Parameters:
//   - timeout: Maximum time to wait; <= 0 waits until every worker is joined
//
// Returns:
//   - ErrShutdownTimeout if workers are still draining when the timeout fires
//     (they keep going; call Wait or Close to join them)
//   - ErrPoolClosed if shutdown had already begun
func (p *Pool) Shutdown(timeout time.Duration) error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.queue.Close()
	debugLog("shutdown requested: queued=%d active=%d", p.queue.Len(), p.active.Load())

	return waitUntil(p.done, timeout)
}

// Close shuts the pool down and blocks until every worker has been joined.
// It is safe to call more than once and after Shutdown.
func (p *Pool) Close() error {
	if err := p.Shutdown(0); err != nil && !errors.Is(err, ErrPoolClosed) {
		return err
	}
	p.Wait()
	return nil
}

// Wait blocks until all workers have exited. Workers only exit after
// shutdown, so calling Wait on an open pool blocks until someone closes it.
func (p *Pool) Wait() {
	<-p.done
}

// Done returns a channel closed once all workers have exited.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Size returns the fixed number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// IsClosed reports whether shutdown has begun.
func (p *Pool) IsClosed() bool {
	return p.closed.Load()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	live := 0
	for _, w := range p.workers {
		if w.alive.Load() {
			live++
		}
	}

	return Stats{
		Workers:     len(p.workers),
		LiveWorkers: live,
		Queued:      p.queue.Len(),
		Active:      int(p.active.Load()),
		Submitted:   p.submitted.Load(),
		Completed:   p.completed.Load(),
		Failed:      p.failed.Load(),
		Panicked:    p.panicked.Load(),
		Rejected:    p.rejected.Load(),
		Retried:     p.retried.Load(),
		Closed:      p.closed.Load(),
	}
}

func (p *Pool) reject() {
	p.rejected.Add(1)
	p.config.metrics.TaskRejected()
}
