package queue

import (
	"runtime"
	"sync/atomic"
)

const (
	// Cache line size for padding to prevent false sharing
	cacheLinePadding = 128
	// Default segment capacity when none is given
	defaultRingCapacity = 65536
	// Maximum spin attempts before yielding or parking
	maxSpinAttempts = 10
	// sealedBit marks a segment tail that accepts no more enqueues
	sealedBit = uint64(1) << 63
)

// ringSlot is a single cell of a segment
type ringSlot[T any] struct {
	// sequence tells producers and consumers whose turn the slot is
	sequence atomic.Uint64
	value    T
	_        [cacheLinePadding - 16]byte
}

// segment is a fixed ring of sequence-numbered slots (Vyukov's bounded MPMC
// queue) whose tail can be sealed once it fills up.
type segment[T any] struct {
	ring []ringSlot[T]
	// Capacity mask (capacity - 1) for fast modulo
	mask uint64

	_    [cacheLinePadding]byte
	head atomic.Uint64
	_    [cacheLinePadding - 8]byte
	tail atomic.Uint64
	_    [cacheLinePadding - 8]byte

	next atomic.Pointer[segment[T]]
}

func newSegment[T any](capacity int) *segment[T] {
	s := &segment[T]{
		ring: make([]ringSlot[T], capacity),
		mask: uint64(capacity - 1), // #nosec G115 -- capacity is validated positive
	}
	for i := range s.ring {
		s.ring[i].sequence.Store(uint64(i)) // #nosec G115 -- i is a ring index
	}
	return s
}

// tryEnqueue claims a slot at the tail. It returns false once the segment is
// sealed; a producer that finds the segment full seals it.
func (s *segment[T]) tryEnqueue(v T) bool {
	for {
		tail := s.tail.Load()
		if tail&sealedBit != 0 {
			return false
		}

		slot := &s.ring[tail&s.mask]
		diff := int64(slot.sequence.Load()) - int64(tail) // #nosec G115 -- sequence comparison

		switch {
		case diff == 0:
			if s.tail.CompareAndSwap(tail, tail+1) {
				slot.value = v
				slot.sequence.Store(tail + 1)
				return true
			}
		case diff < 0:
			// full: no producer may use this segment again
			s.tail.CompareAndSwap(tail, tail|sealedBit)
		}
	}
}

// tryDequeue takes the head item. exhausted is true when the segment is
// sealed and every item it accepted has been taken.
func (s *segment[T]) tryDequeue() (v T, ok, exhausted bool) {
	var zero T

	for {
		head := s.head.Load()
		slot := &s.ring[head&s.mask]
		diff := int64(slot.sequence.Load()) - int64(head+1) // #nosec G115 -- sequence comparison

		switch {
		case diff == 0:
			if s.head.CompareAndSwap(head, head+1) {
				v := slot.value
				slot.value = zero
				// release the slot to the producer one lap ahead
				slot.sequence.Store(head + s.mask + 1)
				return v, true, false
			}
		case diff < 0:
			tail := s.tail.Load()
			return zero, false, tail&sealedBit != 0 && head >= tail&^sealedBit
		}
	}
}

// Ring is a lock-free multi-producer multi-consumer FIFO made of a linked
// list of fixed-size ring segments.
//
// Producers and consumers claim positions with CAS on a segment's tail and
// head. When the tail segment fills, the producer that notices seals it and
// links a fresh segment, so Enqueue never waits for a consumer and the queue
// has no capacity limit. Consumers move to the next segment once the sealed
// one is exhausted. Idle consumers park on a notification channel instead of
// spinning.
type Ring[T any] struct {
	_    [cacheLinePadding]byte
	head atomic.Pointer[segment[T]]
	_    [cacheLinePadding - 8]byte
	tail atomic.Pointer[segment[T]]
	_    [cacheLinePadding - 8]byte

	// size counts accepted items not yet taken, including in-flight enqueues
	size   atomic.Int64
	closed atomic.Bool

	// notifyC carries at most one pending wake-up (BUFFERED, NEVER CLOSED)
	notifyC chan struct{}
	// closeC is closed on Close to release every parked consumer
	closeC chan struct{}

	capacity int
}

// NewRing creates an empty ring whose segments hold capacity items each,
// rounded up to a power of two with a minimum of 2. A capacity <= 0 selects
// the default of 65536.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	// one slot cannot tell a published value from a free slot one lap ahead
	capacity = max(nextPowerOfTwo(capacity), 2)

	q := &Ring[T]{
		notifyC:  make(chan struct{}, 1),
		closeC:   make(chan struct{}),
		capacity: capacity,
	}

	s := newSegment[T](capacity)
	q.head.Store(s)
	q.tail.Store(s)
	return q
}

// Enqueue publishes v at the tail, linking a new segment when the current one
// is full. It returns ErrClosed once the queue has been closed.
func (q *Ring[T]) Enqueue(v T) error {
	// counted before the closed check so a consumer never reports the ring
	// drained while this enqueue is still publishing
	q.size.Add(1)
	if q.closed.Load() {
		q.size.Add(-1)
		return ErrClosed
	}

	for {
		seg := q.tail.Load()
		if seg.tryEnqueue(v) {
			q.wake()
			return nil
		}

		next := seg.next.Load()
		if next == nil {
			fresh := newSegment[T](q.capacity)
			if seg.next.CompareAndSwap(nil, fresh) {
				next = fresh
			} else {
				next = seg.next.Load()
			}
		}
		q.tail.CompareAndSwap(seg, next)
	}
}

// Dequeue removes the head, parking while the ring is empty.
// It returns false once the ring is closed and every published item was taken.
func (q *Ring[T]) Dequeue() (T, bool) {
	var zero T
	spinCount := 0

	for {
		if v, ok := q.TryDequeue(); ok {
			if q.Len() > 0 {
				// more work is waiting; hand the wake-up to another parked consumer
				q.wake()
			}
			return v, true
		}

		if q.drained() {
			return zero, false
		}

		spinCount++
		if spinCount < maxSpinAttempts {
			runtime.Gosched()
			continue
		}
		spinCount = 0

		select {
		case <-q.notifyC:
		case <-q.closeC:
			// an enqueue that passed the closed check may still be publishing
			runtime.Gosched()
		}
	}
}

// TryDequeue removes the head if a published item is there.
func (q *Ring[T]) TryDequeue() (T, bool) {
	var zero T

	for {
		seg := q.head.Load()
		v, ok, exhausted := seg.tryDequeue()
		if ok {
			q.size.Add(-1)
			return v, true
		}
		if !exhausted {
			return zero, false
		}

		next := seg.next.Load()
		if next == nil {
			// the sealing producer has not linked the next segment yet
			return zero, false
		}
		q.head.CompareAndSwap(seg, next)
	}
}

// Len returns the approximate number of items in the ring.
func (q *Ring[T]) Len() int {
	return max(int(q.size.Load()), 0)
}

// Cap returns the capacity of one segment.
func (q *Ring[T]) Cap() int {
	return q.capacity
}

// Close rejects further enqueues and releases every parked consumer.
func (q *Ring[T]) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.closeC)
	}
}

// drained reports whether the ring is closed and empty.
func (q *Ring[T]) drained() bool {
	return q.closed.Load() && q.size.Load() <= 0
}

func (q *Ring[T]) wake() {
	select {
	case q.notifyC <- struct{}{}:
	default:
	}
}
