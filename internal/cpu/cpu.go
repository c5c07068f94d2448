// Package cpu pins worker goroutines to CPUs.
package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread and, where the platform
// allows it, binds that thread to CPU (workerID mod NumCPU).
//
// The returned release function unlocks the thread and must be called from the
// same goroutine. It is non-nil even when err is not, because the thread lock
// is taken regardless of whether the affinity call succeeded.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	release = runtime.UnlockOSThread

	if err := pinToCore(TargetCPU(workerID)); err != nil {
		return release, err
	}
	return release, nil
}

// TargetCPU maps a worker id onto the logical CPUs of this machine.
func TargetCPU(workerID int) int {
	numCPU := runtime.NumCPU()
	cpuID := workerID % numCPU
	if cpuID < 0 {
		cpuID += numCPU
	}
	return cpuID
}
