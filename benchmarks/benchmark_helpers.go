package benchmarks

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/threadpool/pool"
)

// poolConfig is one pool setup a benchmark is repeated under.
type poolConfig struct {
	name string
	opts []pool.Option
}

// getAllConfigs returns the queue and placement variants worth comparing.
func getAllConfigs() []poolConfig {
	return []poolConfig{
		{name: "Unbounded"},
		{name: "Bounded", opts: []pool.Option{pool.WithQueueCapacity(1 << 20)}},
		{name: "Pinned", opts: []pool.Option{pool.WithCPUAffinity()}},
	}
}

// runConfigBenchmark runs benchFunc once per configuration as a sub-benchmark.
func runConfigBenchmark(b *testing.B, configs []poolConfig, benchFunc func(b *testing.B, c poolConfig)) {
	for _, c := range configs {
		b.Run(c.name, func(b *testing.B) {
			benchFunc(b, c)
		})
	}
}

// newBenchPool builds a pool or fails the benchmark.
func newBenchPool(b *testing.B, workers int, opts ...pool.Option) *pool.Pool {
	b.Helper()

	p, err := pool.New(workers, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

// runBatch submits taskCount copies of task and closes the pool, which waits
// for every one of them to finish.
func runBatch(b *testing.B, p *pool.Pool, taskCount int, task pool.Task) {
	b.Helper()

	for range taskCount {
		if err := p.Execute(task); err != nil {
			b.Fatal(err)
		}
	}
	if err := p.Close(); err != nil {
		b.Fatal(err)
	}
}

// reportThroughput reports tasks/sec for a benchmark that ran taskCount tasks per op.
func reportThroughput(b *testing.B, taskCount int) float64 {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	tasksPerSec := (float64(taskCount) / nsPerOp) * 1e9
	b.ReportMetric(tasksPerSec, "tasks/sec")
	return tasksPerSec
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) pool.TaskFunc {
	return func(ctx context.Context) error {
		result := 0
		for i := range iterations {
			result += i * i
		}
		sink(result)
		return nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) pool.TaskFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var sinkValue int

//go:noinline
func sink(v int) { sinkValue = v }

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// Nearest-rank: p=0.50 over 100 samples is index 49.
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
