// Package cpu binds pool workers to OS threads and, where the platform allows
// it, to individual CPU cores.
package cpu

import "runtime"

// coreFor maps a worker id onto the range of available logical CPUs.
func coreFor(workerID int) int {
	n := runtime.NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
