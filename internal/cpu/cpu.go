// Package cpu binds worker goroutines to OS threads and, where the platform
// allows it, to individual CPU cores.
package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread and tries to restrict that
// thread to CPU workerID modulo the number of CPUs. It returns the CPU the
// thread was pinned to (-1 when only the thread lock was applied) and a
// release function that must be called from the same goroutine.
func Pin(workerID int) (int, func()) {
	runtime.LockOSThread()
	cpuID, err := pinToCore(workerID)
	if err != nil {
		cpuID = -1
	}
	return cpuID, runtime.UnlockOSThread
}

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}
