package pool

import (
	"fmt"
	"time"

	"github.com/utkarsh5026/taskqueue/internal/types"
)

// Future is the handle returned for every submitted task.
// Get blocks until the task has run and returns its value and error.
type Future[R any] = types.Future[R]

// unit is one submitted task as it travels through the queue.
// It is owned by the queue until a single worker dequeues it.
type unit struct {
	id       int64
	enqueued time.Time

	// run executes the task and keeps its value for settle.
	run func() error
	// settle fulfils the task's promise: with the kept value when err is nil,
	// otherwise with err. It is called exactly once.
	settle func(err error)
}

// Submit schedules fn on the pool and returns the Future for its result.
// It returns ErrPoolShutdown once Shutdown has begun and ErrNilTask for a nil fn.
//
// Example:
//
//	f, err := pool.Submit(p, func() (string, error) {
//	    return fetch(url)
//	})
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	promise, future := types.New[R]()

	var value R
	u := &unit{
		run: func() error {
			var err error
			value, err = invoke(fn)
			return err
		},
		settle: func(err error) {
			if err != nil {
				promise.Reject(err)
				return
			}
			promise.Resolve(value)
		},
	}

	if err := p.enqueue(u); err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitWith schedules fn(arg). The argument is bound at submission time.
func SubmitWith[A, R any](p *Pool, fn func(A) (R, error), arg A) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (R, error) {
		return fn(arg)
	})
}

// Go schedules a task that produces no value. The returned Future still
// reports completion, and a recovered panic as its error.
func (p *Pool) Go(fn func()) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

func (p *Pool) enqueue(u *unit) error {
	p.lifecycle.RLock()
	defer p.lifecycle.RUnlock()

	if p.State() != StateRunning {
		return ErrPoolShutdown
	}

	u.id = p.taskIDCounter.Add(1)
	u.enqueued = time.Now()

	p.mu.Lock()
	p.queued++
	p.mu.Unlock()

	if err := p.queue.Enqueue(u); err != nil {
		p.mu.Lock()
		p.queued--
		p.markIdleLocked()
		p.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrPoolShutdown, err)
	}

	p.submitted.Add(1)
	if m := p.cfg.metrics; m != nil {
		m.TasksSubmitted.Inc()
		m.QueuedTasks.Inc()
	}
	return nil
}
