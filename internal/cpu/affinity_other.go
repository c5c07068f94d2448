//go:build !linux && !windows

package cpu

// pinToCore is a no-op: thread affinity is not available here, so workers
// only get locked to their OS thread.
func pinToCore(int) error {
	return nil
}
