// Package pool provides a fixed-size worker pool for running independent
// tasks concurrently.
//
// A Pool starts N workers up front. Every worker claims tasks from one shared
// FIFO queue, so each submitted task runs exactly once, on whichever worker
// is free first, in the order it was submitted. The worker count never
// changes after New.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    return err // ErrInvalidPoolSize for size <= 0
//	}
//	defer p.Close()
//
//	for _, url := range urls {
//	    _ = p.ExecuteFunc(func() { fetch(url) })
//	}
//
// Execute never waits for the task to run. Tasks run on worker goroutines,
// so anything they capture must be safe to use from another goroutine.
//
// # Results
//
// Execute is fire-and-forget. To observe a value or error, use Submit, which
// returns a Future:
//
//	f, err := pool.Submit(p, func(ctx context.Context) (int, error) {
//	    return count(ctx, path)
//	})
//	n, err := f.Get()
//
// # Shutdown
//
// Shutdown and Close stop the pool from accepting work. Tasks that were
// already queued still run to completion; nothing is discarded. Once the
// queue is empty every worker exits and is joined. Submitting after shutdown
// fails with ErrPoolClosed and the task is never run.
//
//	if err := p.Shutdown(5 * time.Second); errors.Is(err, pool.ErrShutdownTimeout) {
//	    // workers are still draining; p.Wait() joins them
//	}
//
// # Panics
//
// A panicking task does not take its worker down. The panic is recovered,
// counted in Stats().Panicked, handed to WithPanicHandler as a *PanicError
// and reported as the task's error to futures and WithOnTaskEnd.
//
// # Retry Logic
//
// Tasks that return an error can be retried with backoff:
//
//	p, _ := pool.New(4,
//	    pool.WithRetryPolicy(3, 100*time.Millisecond), // 3 attempts, 100ms first delay
//	    pool.WithBackoff(pool.BackoffJittered, 0, 2*time.Second),
//	)
//
// Retry delays double by default: 100ms, 200ms, 400ms, capped by the
// backoff's max delay. Panics are never retried.
//
// # Rate Limiting
//
// WithRateLimit paces how often workers may start a task, pool-wide:
//
//	p, _ := pool.New(10, pool.WithRateLimit(5.0, 10)) // 5 tasks/sec, burst of 10
//
// # Configuration Options
//
//   - WithQueueCapacity(n): bound the queue; Execute fails with ErrQueueFull when full
//   - WithRetryPolicy(maxAttempts, initialDelay): retry failing tasks
//   - WithBackoff(type, initial, max), WithJitterFactor(f): shape retry delays
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts
//   - WithBaseContext(ctx): context handed to every task
//   - WithCPUAffinity(): pin workers to CPU cores
//   - WithBeforeTaskStart, WithOnTaskEnd, WithOnRetry, WithPanicHandler: hooks
//   - WithMetrics(recorder): export counters, e.g. through the metrics package
//
// The same settings can be loaded from YAML or JSON with LoadConfig and
// turned into a pool with NewFromConfig.
package pool
