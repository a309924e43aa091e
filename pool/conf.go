package pool

import (
	"context"
	"time"

	"github.com/utkarsh5026/threadpool/internal/algorithms"
	"golang.org/x/time/rate"
)

// BackoffType selects the retry delay curve.
type BackoffType = algorithms.BackoffType

const (
	BackoffExponential  = algorithms.BackoffExponential
	BackoffJittered     = algorithms.BackoffJittered
	BackoffDecorrelated = algorithms.BackoffDecorrelated
)

const (
	defaultBackoffInitial = 100 * time.Millisecond
	defaultBackoffMax     = 5 * time.Second
	defaultJitterFactor   = 0.1
)

// Option is a functional option for configuring a Pool.
type Option func(*poolConfig)

type poolConfig struct {
	queueCapacity int

	maxAttempts    int
	retryPolicySet bool
	retryDelay     time.Duration
	backoffType    BackoffType
	backoffInitial time.Duration
	backoffSet     bool
	backoffMax     time.Duration
	jitterFactor   float64

	rateLimiter *rate.Limiter
	baseCtx     context.Context
	cpuAffinity bool

	beforeTaskStart func(TaskInfo)
	onTaskEnd       func(TaskInfo, error)
	onRetry         func(TaskInfo, error)
	onPanic         func(TaskInfo, *PanicError)

	metrics MetricsRecorder
}

func newConfig(opts ...Option) *poolConfig {
	cfg := &poolConfig{
		maxAttempts:    1,
		backoffType:    BackoffExponential,
		backoffInitial: defaultBackoffInitial,
		backoffMax:     defaultBackoffMax,
		jitterFactor:   defaultJitterFactor,
		baseCtx:        context.Background(),
		metrics:        nopRecorder{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// A positive retry delay overrides the backoff's starting point. A zero
	// delay means "retry immediately" unless WithBackoff picked a start.
	switch {
	case !cfg.retryPolicySet:
	case cfg.retryDelay > 0:
		cfg.backoffInitial = cfg.retryDelay
	case !cfg.backoffSet:
		cfg.backoffInitial = 0
	}

	return cfg
}

func (cfg *poolConfig) newBackoff() algorithms.BackoffStrategy {
	return algorithms.NewBackoffStrategy(cfg.backoffType, cfg.backoffInitial, cfg.backoffMax, cfg.jitterFactor)
}

// WithQueueCapacity bounds the shared queue. Once n tasks are waiting,
// Execute fails fast with ErrQueueFull instead of blocking.
// Zero (the default) means unbounded.
func WithQueueCapacity(n int) Option {
	return func(cfg *poolConfig) {
		if n >= 0 {
			cfg.queueCapacity = n
		}
	}
}

// WithRetryPolicy retries a task that returns an error, up to maxAttempts
// runs in total. Panics are never retried.
//
// initialDelay is the wait before the first retry; later waits grow along
// the configured backoff. A positive initialDelay takes precedence over the
// initial delay given to WithBackoff. Zero retries immediately, or defers to
// WithBackoff's initial delay when one was set. A negative value always
// defers to the backoff (WithBackoff's delay, else 100ms).
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *poolConfig) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}
		if initialDelay >= 0 {
			cfg.retryPolicySet = true
			cfg.retryDelay = initialDelay
		}
	}
}

// WithBackoff picks the delay curve between retries.
//
// Example:
//
//	WithBackoff(BackoffDecorrelated, 50*time.Millisecond, 2*time.Second)
func WithBackoff(backoffType BackoffType, initialDelay, maxDelay time.Duration) Option {
	return func(cfg *poolConfig) {
		cfg.backoffType = backoffType
		if initialDelay > 0 {
			cfg.backoffInitial = initialDelay
			cfg.backoffSet = true
		}
		if maxDelay > 0 {
			cfg.backoffMax = maxDelay
		}
	}
}

// WithJitterFactor sets the ± spread used by BackoffJittered, in [0, 1].
func WithJitterFactor(f float64) Option {
	return func(cfg *poolConfig) {
		if f >= 0 && f <= 1 {
			cfg.jitterFactor = f
		}
	}
}

// WithRateLimit caps how fast workers start tasks across the whole pool.
// Non-positive values leave the pool unthrottled.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 tasks/sec, bursts of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithBaseContext sets the context passed to every Task.Run. The pool never
// cancels it; it is there so tasks can inherit values and deadlines from the
// owner of the pool.
func WithBaseContext(ctx context.Context) Option {
	return func(cfg *poolConfig) {
		if ctx != nil {
			cfg.baseCtx = ctx
		}
	}
}

// WithCPUAffinity locks each worker to an OS thread and pins that thread to
// a CPU core (worker i to core i mod NumCPU) where the platform supports it.
func WithCPUAffinity() Option {
	return func(cfg *poolConfig) {
		cfg.cpuAffinity = true
	}
}

// WithBeforeTaskStart registers a hook called by the worker right before the
// first attempt of each task.
func WithBeforeTaskStart(fn func(TaskInfo)) Option {
	return func(cfg *poolConfig) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook called once per task with its final error
// (nil on success, *PanicError after a panic).
func WithOnTaskEnd(fn func(TaskInfo, error)) Option {
	return func(cfg *poolConfig) {
		cfg.onTaskEnd = fn
	}
}

// WithOnRetry registers a hook called after each failed attempt that will be
// retried. info.Attempt is the attempt that just failed.
func WithOnRetry(fn func(TaskInfo, error)) Option {
	return func(cfg *poolConfig) {
		cfg.onRetry = fn
	}
}

// WithPanicHandler registers a hook called when a task panics.
func WithPanicHandler(fn func(TaskInfo, *PanicError)) Option {
	return func(cfg *poolConfig) {
		cfg.onPanic = fn
	}
}

// WithMetrics attaches a recorder, e.g. metrics.NewCollector.
func WithMetrics(m MetricsRecorder) Option {
	return func(cfg *poolConfig) {
		if m != nil {
			cfg.metrics = m
		}
	}
}
