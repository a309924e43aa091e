package pool

import (
	"strings"
	"testing"
	"time"
)

// poolVariant is one queue/worker configuration every lifecycle test runs against.
type poolVariant struct {
	name string
	opts []Option
}

// getAllVariants returns the configurations the pool must behave identically under.
func getAllVariants() []poolVariant {
	return []poolVariant{
		{name: "Unbounded"},
		{name: "Bounded", opts: []Option{WithQueueCapacity(10_000)}},
		{name: "Pinned", opts: []Option{WithCPUAffinity()}},
	}
}

func runVariantTest(t *testing.T, testFunc func(t *testing.T, v poolVariant)) {
	for _, v := range getAllVariants() {
		t.Run(v.name, func(t *testing.T) {
			testFunc(t, v)
		})
	}
}

// newTestPool builds a pool that is closed when the test ends.
func newTestPool(t *testing.T, size int, opts ...Option) *Pool {
	t.Helper()

	p, err := New(size, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", size, err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
