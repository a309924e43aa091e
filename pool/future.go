package pool

import (
	"context"
	"time"
)

// Future holds the eventual result of a task submitted with Submit.
// It is resolved exactly once, after the worker has finished every attempt.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) resolve(value R, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Get blocks until the task has finished. After a panic err is a *PanicError.
// Get may be called any number of times and always returns the same result.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext is Get that gives up when ctx is done. Giving up does not
// cancel the task.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout is Get bounded by timeout; it returns
// context.DeadlineExceeded when the timeout fires first.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// Done returns a channel that is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available without blocking.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// futureTask adapts a value-returning function to Task and delivers its
// final outcome to a Future.
type futureTask[R any] struct {
	fn     func(ctx context.Context) (R, error)
	future *Future[R]
	value  R
}

func (t *futureTask[R]) Run(ctx context.Context) error {
	v, err := t.fn(ctx)
	t.value = v
	return err
}

func (t *futureTask[R]) complete(err error) {
	// A value from an earlier attempt must not leak out of a panicked one.
	if _, panicked := err.(*PanicError); panicked {
		var zero R
		t.value = zero
	}
	t.future.resolve(t.value, err)
}

// Submit queues fn on p and returns a Future for its result. It is a
// function rather than a method because Go methods cannot take type
// parameters.
//
// Example:
//
//	f, err := pool.Submit(p, func(ctx context.Context) (int, error) {
//	    return expensive(ctx)
//	})
//	if err != nil {
//	    return err // ErrPoolClosed, ErrQueueFull
//	}
//	n, err := f.Get()
func Submit[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	f := newFuture[R]()
	if err := p.Execute(&futureTask[R]{fn: fn, future: f}); err != nil {
		return nil, err
	}
	return f, nil
}
