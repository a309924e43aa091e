//go:build linux

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to the core derived from workerID. The returned release func puts the
// thread's original mask back and unlocks it; it is non-nil even when pinning
// fails, because the thread lock itself always succeeds.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()

	// pid 0 targets the calling thread.
	var orig unix.CPUSet
	if err := unix.SchedGetaffinity(0, &orig); err != nil {
		return runtime.UnlockOSThread, fmt.Errorf("read affinity of worker %d: %w", workerID, err)
	}

	release = func() {
		// A thread that cannot be restored stays locked, so the runtime
		// discards it when the goroutine exits instead of reusing it.
		if err := unix.SchedSetaffinity(0, &orig); err != nil {
			return
		}
		runtime.UnlockOSThread()
	}

	core := coreFor(workerID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return release, fmt.Errorf("pin worker %d to cpu %d: %w", workerID, core, err)
	}
	return release, nil
}
