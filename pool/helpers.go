package pool

import "time"

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// A timeout <= 0 waits for as long as it takes.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

// invoke runs fn and converts a panic into a *PanicError.
func invoke[R any](fn func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			result, err = zero, newPanicError(r)
		}
	}()
	return fn()
}
