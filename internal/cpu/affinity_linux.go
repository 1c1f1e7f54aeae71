//go:build linux

package cpu

import (
	"golang.org/x/sys/unix"
)

// pinToCore restricts the current OS thread to one CPU.
// Must be called after runtime.LockOSThread.
func pinToCore(workerID int) (int, error) {
	n := NumCPU()
	cpuID := workerID % n
	if cpuID < 0 {
		cpuID += n
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return -1, err
	}
	return cpuID, nil
}
