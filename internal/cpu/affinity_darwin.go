//go:build darwin

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread. macOS exposes no API for
// hard core pinning, so only the thread lock is applied.
func Pin(_ int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
