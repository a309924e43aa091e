package algorithms

import (
	"cmp"
	"math/rand"
	"sync"
	"time"
)

// maxShift caps the exponent so 1<<n cannot overflow int64.
const maxShift = 62

// exponentialBackoff waits initialDelay * 2^attempt, capped at maxDelay.
//
//	retry 0: 1x
//	retry 1: 2x
//	retry 2: 4x
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{initialDelay: initialDelay, maxDelay: maxDelay}
}

func (eb *exponentialBackoff) NextDelay(attemptNumber int, _ error) time.Duration {
	return calcExponentialDelay(attemptNumber, eb.initialDelay, eb.maxDelay)
}

func (eb *exponentialBackoff) Reset() {}

// jitteredBackoff spreads the exponential delay by ±jitterFactor so that tasks
// failing together do not all retry on the same tick.
// With jitterFactor=0.1 a 1s base delay lands anywhere in [900ms, 1100ms].
type jitteredBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	jitterFactor float64

	mu  sync.Mutex
	rng *rand.Rand
}

func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
	}
}

func (jb *jitteredBackoff) NextDelay(attemptNumber int, _ error) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	base := calcExponentialDelay(attemptNumber, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	spread := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	return clamp(time.Duration(float64(base)*spread), 0, jb.maxDelay)
}

func (jb *jitteredBackoff) Reset() {}

// decorrelatedJitterBackoff draws each delay from [initialDelay, 3*previous],
// capped at maxDelay. Because the next delay depends on the last one rather
// than on the attempt number, concurrent retry schedules drift apart.
//
// See "Exponential Backoff And Jitter", AWS Architecture Blog (2015).
type decorrelatedJitterBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration

	mu        sync.Mutex
	prevDelay time.Duration
	rng       *rand.Rand
}

func newDecorrelatedJitterBackoff(initialDelay, maxDelay time.Duration) *decorrelatedJitterBackoff {
	return &decorrelatedJitterBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		prevDelay:    initialDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
	}
}

func (djb *decorrelatedJitterBackoff) NextDelay(attemptNumber int, _ error) time.Duration {
	djb.mu.Lock()
	defer djb.mu.Unlock()

	if attemptNumber <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	upper := min(time.Duration(float64(djb.prevDelay)*3), djb.maxDelay)
	span := upper - djb.initialDelay
	if span <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	delay := djb.initialDelay + time.Duration(djb.rng.Int63n(int64(span)))
	djb.prevDelay = delay
	return delay
}

func (djb *decorrelatedJitterBackoff) Reset() {
	djb.mu.Lock()
	djb.prevDelay = djb.initialDelay
	djb.mu.Unlock()
}

func calcExponentialDelay(attemptNumber int, initialDelay, maxDelay time.Duration) time.Duration {
	if attemptNumber < 0 {
		return 0
	}
	shift := uint(attemptNumber)
	if attemptNumber > maxShift || initialDelay > maxDelay>>shift {
		return maxDelay
	}
	return initialDelay << shift
}

func clamp[V cmp.Ordered](v, lo, hi V) V {
	return max(lo, min(v, hi))
}
