//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// Pin only locks the OS thread on platforms without an affinity API.
func Pin(_ int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
