// Package pool provides a fixed-size worker pool that executes arbitrary
// submitted tasks and hands back a Future for each one.
//
// The primary type is Pool, a set of worker goroutines that all consume one
// shared FIFO queue. Every submission is wrapped, together with a fresh
// promise, into a unit of work; the worker that dequeues it runs the task and
// fulfils the promise with the task's value or error.
//
// # Basic Usage
//
//	p := pool.New(pool.WithWorkerCount(4))
//	defer p.Close()
//
//	f, err := pool.Submit(p, func() (int, error) {
//	    return 6 * 7, nil
//	})
//	if err != nil {
//	    return err // pool already shut down
//	}
//	v, err := f.Get() // 42, nil
//
// # Submitting Work
//
//   - Submit: a task with no arguments returning (R, error)
//   - SubmitWith: a one-argument task; the argument is bound at submission
//   - Pool.Go: a task with no result; the Future still reports completion
//
// Tasks run exactly once, in FIFO dequeue order, and are never retried.
// A returned error or a recovered panic (PanicError) is stored in the task's
// Future and never affects the worker or the pool.
//
// # Waiting for Work
//
// Join blocks until the queue is empty and no worker is running a task. It is
// a point-in-time barrier: tasks submitted after Join returns are not covered,
// and Join must not be called from inside a task of the same pool.
//
// # Shutdown
//
// Shutdown stops accepting tasks, wakes every worker and waits for them to
// exit. Tasks still queued are failed with ErrPoolShutdown unless the pool was
// built WithDrainOnShutdown, in which case they run first:
//
//	if err := p.Shutdown(5 * time.Second); errors.Is(err, pool.ErrShutdownTimeout) {
//	    // workers are still finishing in the background
//	}
//
// # Configuration Options
//
//   - WithWorkerCount(n): Number of workers (default: GOMAXPROCS, at least 1)
//   - WithQueue(kind): QueueBlocking (default, unbounded) or QueueRing (lock-free, segmented, unbounded)
//   - WithRingCapacity(n): Segment size of the lock-free ring
//   - WithRateLimit(rate, burst): Token bucket applied before each task
//   - WithDrainOnShutdown(): Run queued tasks during shutdown instead of failing them
//   - WithCPUPinning(): Pin each worker to one CPU where supported
//   - WithLogger(logger): zap logger for lifecycle events
//   - WithMetrics(m): Prometheus collectors updated by the workers
//   - WithOnTaskStart(fn), WithOnTaskEnd(fn): Observation hooks
package pool
