package pool

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/utkarsh5026/taskqueue/internal/cpu"
)

// worker takes units from the shared queue one at a time until the queue is
// closed and empty. Task failures stay inside the unit's Future. A task that
// ends its goroutine with runtime.Goexit takes the worker goroutine with it,
// so a replacement is started on the way out.
func (p *Pool) worker(workerID int) {
	exited := false
	defer func() {
		if !exited {
			p.logger.Warn("worker goroutine exited inside a task; starting a replacement",
				zap.Int("worker", workerID))
			p.group.Go(func() error {
				p.worker(workerID)
				return nil
			})
		}
	}()

	if p.cfg.pinCPU {
		release, err := cpu.Pin(workerID)
		defer release()
		if err != nil {
			p.logger.Debug("cpu pinning unavailable", zap.Int("worker", workerID), zap.Error(err))
		}
	}

	for {
		u, ok := p.queue.Dequeue()
		if !ok {
			exited = true
			return
		}

		if p.discarding() {
			p.discard(u, ErrPoolShutdown)
			continue
		}

		p.execute(u)
	}
}

// discarding reports whether dequeued units should be failed instead of run.
func (p *Pool) discarding() bool {
	return p.State() != StateRunning && !p.cfg.drainOnShutdown
}

// discard fails u without running it.
func (p *Pool) discard(u *unit, err error) {
	u.settle(err)
	p.discarded.Add(1)

	p.mu.Lock()
	p.queued--
	p.markIdleLocked()
	p.mu.Unlock()

	if m := p.cfg.metrics; m != nil {
		m.TasksDiscarded.Inc()
		m.QueuedTasks.Dec()
	}
}

// execute runs u outside every lock and fulfils its promise. The promise is
// settled and the unit leaves the active count however the task ends,
// including runtime.Goexit.
func (p *Pool) execute(u *unit) {
	if p.cfg.rateLimiter != nil {
		if err := p.cfg.rateLimiter.Wait(p.ctx); err != nil {
			p.discard(u, fmt.Errorf("%w: %w", ErrPoolShutdown, err))
			return
		}
	}

	p.mu.Lock()
	p.queued--
	p.active++
	p.mu.Unlock()

	if m := p.cfg.metrics; m != nil {
		m.QueuedTasks.Dec()
		m.ActiveTasks.Inc()
	}

	var (
		err      error
		returned bool
	)
	start := time.Now()
	defer func() {
		if !returned {
			err = newPanicError(ErrTaskExited)
		}
		p.finish(u, err, time.Since(start))
	}()

	if fn := p.cfg.onTaskStart; fn != nil {
		p.runHook("start", u.id, func() { fn(u.id) })
	}

	err = u.run()
	returned = true
}

// finish reports a ran unit to the end hook, the counters and the metrics,
// then settles it and wakes Join waiters.
func (p *Pool) finish(u *unit, err error, elapsed time.Duration) {
	defer func() {
		if err != nil {
			p.failed.Add(1)
		} else {
			p.completed.Add(1)
		}

		if m := p.cfg.metrics; m != nil {
			if err != nil {
				m.TasksFailed.Inc()
			} else {
				m.TasksCompleted.Inc()
			}
			m.TaskLatency.Observe(elapsed.Seconds())
			m.ActiveTasks.Dec()
		}

		u.settle(err)

		p.mu.Lock()
		p.active--
		p.markIdleLocked()
		p.mu.Unlock()
	}()

	if fn := p.cfg.onTaskEnd; fn != nil {
		p.runHook("end", u.id, func() { fn(u.id, err, elapsed) })
	}
}

// runHook calls a task hook, logging and swallowing a panic so a faulty hook
// cannot kill the worker or leave a Future unsettled.
func (p *Pool) runHook(name string, id int64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task hook panicked",
				zap.String("hook", name),
				zap.Int64("task", id),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
