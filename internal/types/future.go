package types

import (
	"context"
	"errors"
)

// ErrAlreadyFulfilled is the panic value raised when a Promise is settled twice.
// Settling twice means two workers ran the same unit, which the pool never does.
var ErrAlreadyFulfilled = errors.New("promise already fulfilled")

// Future is the consumer side of a single-use result channel.
// It becomes ready exactly once, when the matching Promise is resolved or rejected,
// and every read after that observes the same value and error.
//
// Type parameters:
//   - R: The result type produced by the task
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

// Promise is the producer side of a Future. It must be settled exactly once.
type Promise[R any] struct {
	future  *Future[R]
	settled bool
}

// New creates a connected Promise/Future pair.
//
// Example:
//
//	promise, future := types.New[int]()
//	go func() { promise.Resolve(42) }()
//	v, err := future.Get() // 42, nil
func New[R any]() (*Promise[R], *Future[R]) {
	f := &Future[R]{done: make(chan struct{})}
	return &Promise[R]{future: f}, f
}

// Resolve stores a successful value and wakes every waiter.
// It panics with ErrAlreadyFulfilled if the promise was already settled.
func (p *Promise[R]) Resolve(value R) {
	p.settle(value, nil)
}

// Reject stores a failure and wakes every waiter.
// It panics with ErrAlreadyFulfilled if the promise was already settled.
func (p *Promise[R]) Reject(err error) {
	var zero R
	p.settle(zero, err)
}

// settle is only ever called by the goroutine that owns the promise,
// so the settled flag needs no synchronization of its own.
func (p *Promise[R]) settle(value R, err error) {
	if p.settled {
		panic(ErrAlreadyFulfilled)
	}
	p.settled = true

	p.future.value = value
	p.future.err = err
	close(p.future.done)
}

// Get blocks until the result is available and returns it.
// Get may be called any number of times, from any number of goroutines.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext waits for the result or for ctx to be done, whichever comes first.
// When ctx wins, the zero value and ctx.Err() are returned; the task itself keeps running
// and the result can still be read later.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// TryGet returns the result without blocking.
// The last return value reports whether the result was ready.
func (f *Future[R]) TryGet() (R, error, bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero R
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the result is available.
// Useful in select statements.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
