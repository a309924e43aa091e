// Package metrics exports pool activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	c, err := metrics.NewCollector(reg, "myapp", "workers")
//	if err != nil {
//	    return err
//	}
//	p, err := pool.New(8, pool.WithMetrics(c))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/utkarsh5026/threadpool/pool"
)

// Collector implements pool.MetricsRecorder on top of Prometheus collectors.
// One Collector should serve one pool; attach it with pool.WithMetrics.
type Collector struct {
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksPanicked  prometheus.Counter
	TasksRejected  prometheus.Counter
	TaskRetries    prometheus.Counter
	ActiveWorkers  prometheus.Gauge
	QueueLength    prometheus.Gauge
	TaskDuration   prometheus.Histogram
	QueueWait      prometheus.Histogram
}

var _ pool.MetricsRecorder = (*Collector)(nil)

// NewCollector creates the pool metrics and registers them with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace, subsystem string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   prometheus.DefBuckets,
		})
	}

	c := &Collector{
		TasksSubmitted: counter("tasks_submitted_total", "Tasks accepted into the queue."),
		TasksCompleted: counter("tasks_completed_total", "Tasks that finished without error."),
		TasksFailed:    counter("tasks_failed_total", "Tasks whose final attempt returned an error."),
		TasksPanicked:  counter("tasks_panicked_total", "Tasks that panicked."),
		TasksRejected:  counter("tasks_rejected_total", "Submissions refused because the pool was closed or full."),
		TaskRetries:    counter("task_retries_total", "Retry attempts across all tasks."),
		ActiveWorkers:  gauge("active_workers", "Worker goroutines currently running."),
		QueueLength:    gauge("queue_depth", "Tasks waiting in the queue."),
		TaskDuration:   histogram("task_duration_seconds", "Run time of a task including retries."),
		QueueWait:      histogram("task_queue_wait_seconds", "Time a task spent queued before a worker claimed it."),
	}

	for _, m := range []prometheus.Collector{
		c.TasksSubmitted,
		c.TasksCompleted,
		c.TasksFailed,
		c.TasksPanicked,
		c.TasksRejected,
		c.TaskRetries,
		c.ActiveWorkers,
		c.QueueLength,
		c.TaskDuration,
		c.QueueWait,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNewCollector is NewCollector that panics on a registration error.
func MustNewCollector(reg prometheus.Registerer, namespace, subsystem string) *Collector {
	c, err := NewCollector(reg, namespace, subsystem)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) TaskSubmitted() { c.TasksSubmitted.Inc() }
func (c *Collector) TaskRejected() { c.TasksRejected.Inc() }
func (c *Collector) TaskRetried() { c.TaskRetries.Inc() }
func (c *Collector) WorkerStarted() { c.ActiveWorkers.Inc() }
func (c *Collector) WorkerStopped() { c.ActiveWorkers.Dec() }

func (c *Collector) QueueDepth(n int) {
	c.QueueLength.Set(float64(n))
}

func (c *Collector) TaskStarted(queueWait time.Duration) {
	c.QueueWait.Observe(queueWait.Seconds())
}

func (c *Collector) TaskFinished(outcome pool.Outcome, runtime time.Duration) {
	c.TaskDuration.Observe(runtime.Seconds())

	switch outcome {
	case pool.OutcomeSuccess:
		c.TasksCompleted.Inc()
	case pool.OutcomeFailed:
		c.TasksFailed.Inc()
	case pool.OutcomePanicked:
		c.TasksPanicked.Inc()
	}
}
