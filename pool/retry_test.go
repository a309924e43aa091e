package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_Retry_SuccessOnFirstAttempt(t *testing.T) {
	runVariantTest(t, func(t *testing.T, v poolVariant) {
		p := newTestPool(t, 2, append(v.opts, WithRetryPolicy(3, 100*time.Millisecond))...)

		var attemptCount atomic.Int32
		_ = p.Execute(TaskFunc(func(ctx context.Context) error {
			attemptCount.Add(1)
			return nil
		}))
		_ = p.Close()

		// Should only execute once since it succeeded on first attempt
		if attemptCount.Load() != 1 {
			t.Errorf("expected 1 attempt, got %d", attemptCount.Load())
		}
		if got := p.Stats().Retried; got != 0 {
			t.Errorf("expected 0 retries, got %d", got)
		}
	})
}

func TestPool_Retry_SuccessAfterRetries(t *testing.T) {
	p := newTestPool(t, 2, WithRetryPolicy(3, 50*time.Millisecond))

	var attemptCount atomic.Int32
	done := make(chan time.Duration, 1)
	start := time.Now()
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		if attemptCount.Add(1) < 3 {
			return errors.New("temporary failure")
		}
		done <- time.Since(start)
		return nil
	}))

	elapsed := <-done
	_ = p.Close()

	if attemptCount.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount.Load())
	}

	// 50ms before the second attempt, 100ms before the third.
	if expectedMinDelay := 150 * time.Millisecond; elapsed < expectedMinDelay {
		t.Errorf("expected at least %v elapsed time for backoff, got %v", expectedMinDelay, elapsed)
	}

	stats := p.Stats()
	if stats.Completed != 1 || stats.Failed != 0 || stats.Retried != 2 {
		t.Errorf("completed=%d failed=%d retried=%d, want 1/0/2", stats.Completed, stats.Failed, stats.Retried)
	}
}

func TestPool_Retry_AllAttemptsFail(t *testing.T) {
	runVariantTest(t, func(t *testing.T, v poolVariant) {
		p := newTestPool(t, 2, append(v.opts, WithRetryPolicy(4, 0))...)

		var attemptCount atomic.Int32
		expectedErr := errors.New("permanent failure")

		_ = p.Execute(TaskFunc(func(ctx context.Context) error {
			attemptCount.Add(1)
			return expectedErr
		}))
		_ = p.Close()

		if attemptCount.Load() != 4 {
			t.Errorf("expected 4 attempts, got %d", attemptCount.Load())
		}

		stats := p.Stats()
		if stats.Failed != 1 || stats.Retried != 3 {
			t.Errorf("failed=%d retried=%d, want 1/3", stats.Failed, stats.Retried)
		}
	})
}

func TestPool_Retry_FinalErrorReachesEndHook(t *testing.T) {
	expectedErr := errors.New("permanent failure")
	got := make(chan error, 1)

	p := newTestPool(t, 1,
		WithRetryPolicy(2, 0),
		WithOnTaskEnd(func(_ TaskInfo, err error) { got <- err }),
	)

	_ = p.Execute(TaskFunc(func(ctx context.Context) error { return expectedErr }))

	if err := <-got; !errors.Is(err, expectedErr) {
		t.Errorf("end hook saw %v, want %v", err, expectedErr)
	}
}

func TestPool_Retry_ZeroDelay(t *testing.T) {
	p := newTestPool(t, 1, WithRetryPolicy(5, 0))

	var attemptCount atomic.Int32
	start := time.Now()
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		attemptCount.Add(1)
		return errors.New("fail")
	}))
	_ = p.Close()

	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("zero-delay retries took %v", elapsed)
	}
	if attemptCount.Load() != 5 {
		t.Errorf("expected 5 attempts, got %d", attemptCount.Load())
	}
}

func TestPool_Retry_NoPolicyMeansSingleAttempt(t *testing.T) {
	p := newTestPool(t, 1)

	var attemptCount atomic.Int32
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		attemptCount.Add(1)
		return errors.New("fail")
	}))
	_ = p.Close()

	if attemptCount.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attemptCount.Load())
	}
}

func TestPool_Retry_PanicNotRetried(t *testing.T) {
	p := newTestPool(t, 1, WithRetryPolicy(3, 0))

	var attemptCount atomic.Int32
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		attemptCount.Add(1)
		panic("no retry for me")
	}))
	_ = p.Close()

	if attemptCount.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attemptCount.Load())
	}
	if got := p.Stats().Panicked; got != 1 {
		t.Errorf("Panicked = %d, want 1", got)
	}
}

func TestPool_Retry_BaseContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPool(t, 1, WithBaseContext(ctx), WithRetryPolicy(10, 200*time.Millisecond))

	var attemptCount atomic.Int32
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		attemptCount.Add(1)
		return errors.New("fail")
	}))

	waitFor(t, time.Second, func() bool { return attemptCount.Load() == 1 })
	cancel()
	_ = p.Close()

	if got := attemptCount.Load(); got != 1 {
		t.Errorf("expected retries to stop after cancel, got %d attempts", got)
	}
	if got := p.Stats().Failed; got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
}

func TestPool_Retry_OnRetryAttemptNumbers(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts []int
	)

	p := newTestPool(t, 1,
		WithRetryPolicy(4, 0),
		WithOnRetry(func(info TaskInfo, err error) {
			mu.Lock()
			attempts = append(attempts, info.Attempt)
			mu.Unlock()
		}),
	)

	var calls atomic.Int32
	_ = p.Execute(TaskFunc(func(ctx context.Context) error {
		if calls.Add(1) < 4 {
			return errors.New("retry me")
		}
		return nil
	}))
	_ = p.Close()

	mu.Lock()
	defer mu.Unlock()
	want := []int{1, 2, 3}
	if len(attempts) != len(want) {
		t.Fatalf("onRetry saw attempts %v, want %v", attempts, want)
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Errorf("onRetry call %d: attempt %d, want %d", i, attempts[i], want[i])
		}
	}
}

func TestPool_Retry_BackoffCapped(t *testing.T) {
	p := newTestPool(t, 1,
		WithBackoff(BackoffExponential, 0, 30*time.Millisecond),
		WithRetryPolicy(4, 20*time.Millisecond),
	)

	start := time.Now()
	_ = p.Execute(TaskFunc(func(ctx context.Context) error { return errors.New("fail") }))
	_ = p.Close()
	elapsed := time.Since(start)

	// 20ms + 30ms + 30ms with the cap; uncapped it would be 20+40+80.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected at least 80ms, got %v", elapsed)
	}
	if elapsed > 250*time.Millisecond {
		t.Errorf("delays do not look capped: %v", elapsed)
	}
}

func TestPool_Retry_BackoffInitialDelayHonoured(t *testing.T) {
	backoff := WithBackoff(BackoffExponential, 100*time.Millisecond, time.Second)

	tests := []struct {
		name string
		opts []Option
	}{
		{"zero delay after backoff", []Option{backoff, WithRetryPolicy(2, 0)}},
		{"zero delay before backoff", []Option{WithRetryPolicy(2, 0), backoff}},
		{"negative delay", []Option{backoff, WithRetryPolicy(2, -1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newConfig(tt.opts...).backoffInitial; got != 100*time.Millisecond {
				t.Fatalf("backoffInitial = %v, want 100ms", got)
			}

			p := newTestPool(t, 1, tt.opts...)

			start := time.Now()
			_ = p.Execute(TaskFunc(func(ctx context.Context) error { return errors.New("fail") }))
			_ = p.Close()

			if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
				t.Errorf("retry waited %v, want about 100ms from WithBackoff", elapsed)
			}
		})
	}
}

func TestPool_Retry_PositiveDelayOverridesBackoff(t *testing.T) {
	cfg := newConfig(
		WithBackoff(BackoffExponential, time.Second, 5*time.Second),
		WithRetryPolicy(3, 10*time.Millisecond),
	)
	if cfg.backoffInitial != 10*time.Millisecond {
		t.Errorf("backoffInitial = %v, want 10ms", cfg.backoffInitial)
	}

	if got := newConfig(WithRetryPolicy(3, -1)).backoffInitial; got != defaultBackoffInitial {
		t.Errorf("negative delay without WithBackoff: backoffInitial = %v, want %v", got, defaultBackoffInitial)
	}
}

func TestPool_Retry_BackoffStrategies(t *testing.T) {
	strategies := []struct {
		name string
		typ  BackoffType
	}{
		{"exponential", BackoffExponential},
		{"jittered", BackoffJittered},
		{"decorrelated", BackoffDecorrelated},
	}

	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			p := newTestPool(t, 2,
				WithBackoff(s.typ, 5*time.Millisecond, 20*time.Millisecond),
				WithJitterFactor(0.5),
				WithRetryPolicy(3, -1),
			)

			var calls atomic.Int32
			for range 4 {
				_ = p.Execute(TaskFunc(func(ctx context.Context) error {
					calls.Add(1)
					return errors.New("fail")
				}))
			}
			_ = p.Close()

			if got := calls.Load(); got != 12 {
				t.Errorf("expected 12 attempts, got %d", got)
			}
		})
	}
}
