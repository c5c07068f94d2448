package queue

import "sync"

// compactThreshold is the number of consumed slots after which the backing
// slice is shifted down so it does not grow without bound.
const compactThreshold = 1024

// Blocking is an unbounded FIFO guarded by a mutex and a condition variable.
//
// Enqueue wakes exactly one suspended consumer, Close wakes all of them.
// The mutex is held only for the append or the removal itself.
type Blocking[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int
	closed bool
}

// NewBlocking creates an empty Blocking queue.
func NewBlocking[T any]() *Blocking[T] {
	q := &Blocking[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends v and signals one waiting consumer.
func (q *Blocking[T]) Enqueue(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Dequeue blocks until an item is available or the queue is closed and drained.
func (q *Blocking[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenLocked() == 0 && !q.closed {
		q.cond.Wait()
	}

	return q.popLocked()
}

// TryDequeue pops the head if there is one.
func (q *Blocking[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Len returns the number of queued items.
func (q *Blocking[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Close marks the queue closed and wakes every consumer.
func (q *Blocking[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

func (q *Blocking[T]) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Blocking[T]) popLocked() (T, bool) {
	var zero T
	if q.lenLocked() == 0 {
		return zero, false
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return v, true
}
