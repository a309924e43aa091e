package pool

import (
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/threadpool/internal/algorithms"
	"github.com/utkarsh5026/threadpool/internal/cpu"
)

// worker is the pool's handle on one worker goroutine. The handle outlives
// the goroutine so Stats can report which workers are still running.
type worker struct {
	id        int
	pool      *Pool
	backoff   algorithms.BackoffStrategy
	alive     atomic.Bool
	processed atomic.Int64
}

func newWorker(id int, p *Pool) *worker {
	w := &worker{
		id:      id,
		pool:    p,
		backoff: p.config.newBackoff(),
	}
	// Live from construction, not from when the scheduler first runs it.
	w.alive.Store(true)
	return w
}

// run claims tasks until the queue is closed and empty.
func (w *worker) run() error {
	defer w.alive.Store(false)

	cfg := w.pool.config
	if cfg.cpuAffinity {
		release, err := cpu.Pin(w.id)
		defer release()
		if err != nil {
			debugLog("worker %d: %v", w.id, err)
		}
	}

	cfg.metrics.WorkerStarted()
	defer cfg.metrics.WorkerStopped()

	for {
		qt, ok := w.pool.queue.Pop()
		if !ok {
			debugLog("worker %d exiting after %d tasks", w.id, w.processed.Load())
			return nil
		}
		w.execute(qt)
	}
}

// execute runs one claimed task through rate limiting, hooks, retries and
// panic recovery, then records the outcome. It never panics.
func (w *worker) execute(qt *queuedTask) {
	p := w.pool
	cfg := p.config

	p.active.Add(1)
	defer p.active.Add(-1)

	cfg.metrics.QueueDepth(p.queue.Len())

	if cfg.rateLimiter != nil {
		if err := cfg.rateLimiter.Wait(cfg.baseCtx); err != nil {
			// The task still runs; the limiter only paces starts.
			debugLog("worker %d: rate limiter: %v", w.id, err)
		}
	}

	info := TaskInfo{
		ID:         qt.id,
		WorkerID:   w.id,
		Attempt:    1,
		EnqueuedAt: qt.enqueuedAt,
	}

	if cfg.beforeTaskStart != nil {
		w.guard("before-start hook", func() { cfg.beforeTaskStart(info) })
	}

	start := time.Now()
	cfg.metrics.TaskStarted(start.Sub(qt.enqueuedAt))

	err := w.process(qt.task, &info)
	elapsed := time.Since(start)

	outcome := OutcomeSuccess
	pe, isPanic := err.(*PanicError)
	switch {
	case isPanic:
		outcome = OutcomePanicked
		p.panicked.Add(1)
		debugLog("worker %d: task %d panicked: %v\n%s", w.id, qt.id, pe.Value, pe.Stack)
		if cfg.onPanic != nil {
			w.guard("panic handler", func() { cfg.onPanic(info, pe) })
		}
	case err != nil:
		outcome = OutcomeFailed
		p.failed.Add(1)
	default:
		p.completed.Add(1)
	}

	w.processed.Add(1)
	cfg.metrics.TaskFinished(outcome, elapsed)

	if cfg.onTaskEnd != nil {
		w.guard("task-end hook", func() { cfg.onTaskEnd(info, err) })
	}
	if c, ok := qt.task.(completer); ok {
		c.complete(err)
	}
}

// process runs the task with retry, converting a panic into *PanicError so
// the worker survives it. A panic ends the task; it is not retried.
func (w *worker) process(task Task, info *TaskInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	cfg := w.pool.config
	ctx := cfg.baseCtx
	maxAttempts := max(cfg.maxAttempts, 1)

	w.backoff.Reset()

	for attempt := range maxAttempts {
		if attempt > 0 {
			if delay := w.backoff.NextDelay(attempt-1, err); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return err
				}
			}
			info.Attempt = attempt + 1
		}

		err = task.Run(ctx)
		if err == nil {
			return nil
		}

		if attempt < maxAttempts-1 {
			w.pool.retried.Add(1)
			cfg.metrics.TaskRetried()
			if cfg.onRetry != nil {
				retryInfo, lastErr := *info, err
				w.guard("retry hook", func() { cfg.onRetry(retryInfo, lastErr) })
			}
		}
	}

	return err
}

// guard runs a user hook outside the task's own recovery. A panicking hook is
// swallowed so that it cannot take the worker down with it.
func (w *worker) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			debugLog("worker %d: %s panicked: %v", w.id, name, r)
		}
	}()
	fn()
}
