package algorithms

import (
	"fmt"
	"strings"
	"time"
)

// BackoffType selects the delay curve used between task retries.
type BackoffType int

const (
	// BackoffExponential doubles the delay on every retry (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered is exponential with a random ± spread.
	BackoffJittered
	// BackoffDecorrelated picks each delay relative to the previous one.
	BackoffDecorrelated
)

func (b BackoffType) String() string {
	switch b {
	case BackoffJittered:
		return "jittered"
	case BackoffDecorrelated:
		return "decorrelated"
	default:
		return "exponential"
	}
}

// ParseBackoffType maps a config name to a BackoffType. Empty means exponential.
func ParseBackoffType(name string) (BackoffType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exponential":
		return BackoffExponential, nil
	case "jittered", "jitter":
		return BackoffJittered, nil
	case "decorrelated":
		return BackoffDecorrelated, nil
	default:
		return BackoffExponential, fmt.Errorf("unknown backoff type %q", name)
	}
}

// BackoffStrategy computes retry delays. Implementations may be stateful, so
// the pool builds one per worker.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attemptNumber (0-indexed).
	NextDelay(attemptNumber int, lastError error) time.Duration

	// Reset clears per-task state before a new task starts retrying.
	Reset()
}

// NewBackoffStrategy returns a fresh strategy of the requested type.
func NewBackoffStrategy(
	backoffType BackoffType,
	initialDelay, maxDelay time.Duration,
	jitterFactor float64,
) BackoffStrategy {
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}

	switch backoffType {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)
	case BackoffDecorrelated:
		return newDecorrelatedJitterBackoff(initialDelay, maxDelay)
	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}
