package pool

import "time"

// MetricsRecorder receives pool events. Implementations must be safe for
// concurrent use; every worker reports through the same recorder.
type MetricsRecorder interface {
	TaskSubmitted()
	TaskRejected()
	TaskStarted(queueWait time.Duration)
	TaskRetried()
	TaskFinished(outcome Outcome, runtime time.Duration)
	WorkerStarted()
	WorkerStopped()
	QueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) TaskSubmitted() {}
func (nopRecorder) TaskRejected() {}
func (nopRecorder) TaskStarted(time.Duration) {}
func (nopRecorder) TaskRetried() {}
func (nopRecorder) TaskFinished(Outcome, time.Duration) {}
func (nopRecorder) WorkerStarted() {}
func (nopRecorder) WorkerStopped() {}
func (nopRecorder) QueueDepth(int) {}
