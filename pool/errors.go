package pool

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPoolShutdown is returned by submissions made after Shutdown began,
	// and stored in the Future of every queued task discarded by Shutdown.
	ErrPoolShutdown = errors.New("pool is shut down")

	// ErrNilTask is returned when a nil function is submitted.
	ErrNilTask = errors.New("task function is nil")

	// ErrShutdownTimeout is returned by Shutdown when the workers did not exit in time.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrTaskExited is wrapped in the PanicError of a task that ended its
	// goroutine with runtime.Goexit instead of returning.
	ErrTaskExited = errors.New("task exited its goroutine without returning")
)

// stackBufSize bounds the stack trace captured for a panicking task.
const stackBufSize = 4096

// PanicError is the error stored in a task's Future when the task panicked.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(r any) *PanicError {
	buf := make([]byte, stackBufSize)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: r, Stack: buf[:n]}
}
