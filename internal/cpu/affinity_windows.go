//go:build windows

package cpu

import (
	"fmt"
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// Pin locks the calling goroutine to its OS thread and sets that thread's
// affinity mask to a single core. release restores the previous mask before
// unlocking the thread.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()

	core := coreFor(workerID)
	handle, _, _ := getCurrentThread.Call()

	// SetThreadAffinityMask returns the previous mask, or 0 on failure.
	prev, _, callErr := setThreadAffinityMask.Call(handle, uintptr(1)<<uint(core))
	if prev == 0 {
		return runtime.UnlockOSThread, fmt.Errorf("pin worker %d to cpu %d: %w", workerID, core, callErr)
	}

	release = func() {
		// Left locked on failure so the runtime retires the thread.
		if restored, _, _ := setThreadAffinityMask.Call(handle, prev); restored == 0 {
			return
		}
		runtime.UnlockOSThread()
	}
	return release, nil
}
