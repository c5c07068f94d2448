// Package queue provides the ordered, thread-safe task queues the pool's workers consume.
//
// Every implementation satisfies Queue, so the pool can run on the default
// lock-and-condition-variable queue (Blocking) or on the lock-free ring (Ring)
// without any change to its own logic.
package queue

import "errors"

// ErrClosed is returned by Enqueue once the queue has been closed.
var ErrClosed = errors.New("queue is closed")

// Queue is a FIFO queue shared by many producers and many consumers.
type Queue[T any] interface {
	// Enqueue appends v at the tail. It fails only with ErrClosed.
	Enqueue(v T) error

	// Dequeue removes and returns the head, suspending while the queue is empty.
	// It returns false once the queue is closed and holds no more items.
	Dequeue() (T, bool)

	// TryDequeue removes and returns the head without blocking.
	TryDequeue() (T, bool)

	// Len returns a point-in-time item count.
	Len() int

	// Close rejects further enqueues and wakes every suspended consumer.
	// Items already queued stay dequeuable. Close is idempotent.
	Close()
}

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}
