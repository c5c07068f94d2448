package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/taskqueue/internal/queue"
)

// Pool is a fixed set of workers consuming one shared FIFO task queue.
// All methods are safe for concurrent use.
type Pool struct {
	cfg    *config
	logger *zap.Logger
	queue  queue.Queue[*unit]

	// ctx is cancelled when workers should stop waiting on the rate limiter.
	ctx    context.Context
	cancel context.CancelFunc

	// lifecycle orders submissions (read side) against Shutdown (write side),
	// so no unit is enqueued after the queue has been closed.
	lifecycle sync.RWMutex
	state     atomic.Int32

	// mu guards queued and active; idle is signalled when both reach zero.
	mu     sync.Mutex
	idle   *sync.Cond
	queued int
	active int

	taskIDCounter atomic.Int64
	submitted     atomic.Uint64
	completed     atomic.Uint64
	failed        atomic.Uint64
	discarded     atomic.Uint64

	// group tracks every worker goroutine, replacements included.
	group errgroup.Group
	done  chan struct{}
}

// New creates a pool and starts all of its workers.
// Default configuration: workers = GOMAXPROCS, blocking unbounded queue.
func New(opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		logger: cfg.logger.Named("taskqueue"),
		queue:  newQueue(cfg),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mu)

	for i := range cfg.workerCount {
		p.group.Go(func() error {
			p.worker(i)
			return nil
		})
	}

	go func() {
		_ = p.group.Wait()
		p.state.Store(int32(StateStopped))
		p.cancel()
		p.logger.Info("pool stopped",
			zap.Uint64("completed", p.completed.Load()),
			zap.Uint64("failed", p.failed.Load()),
			zap.Uint64("discarded", p.discarded.Load()),
		)
		close(p.done)
	}()

	p.logger.Info("pool started",
		zap.Int("workers", cfg.workerCount),
		zap.Stringer("queue", cfg.queueKind),
		zap.Bool("drainOnShutdown", cfg.drainOnShutdown),
	)

	return p
}

func newQueue(cfg *config) queue.Queue[*unit] {
	switch cfg.queueKind {
	case QueueRing:
		return queue.NewRing[*unit](cfg.ringCapacity)
	default:
		return queue.NewBlocking[*unit]()
	}
}

// State returns the current lifecycle state.
func (p *Pool) State() State {
	return State(p.state.Load())
}

// Done returns a channel that is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Join blocks until the queue is empty and no worker is executing a task.
//
// Every task submitted before Join was called has finished, and its Future is
// ready, by the time Join returns. Join does not stop later submissions, and
// it returns immediately on an idle pool. Calling Join from inside a task of
// the same pool deadlocks, because the calling task is itself active.
func (p *Pool) Join() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.queued > 0 || p.active > 0 {
		p.idle.Wait()
	}
}

// Shutdown stops the pool: new submissions are rejected, the queue is closed
// and every worker is woken up. Tasks already running finish normally. Tasks
// still queued fail with ErrPoolShutdown, or run first if the pool was built
// WithDrainOnShutdown.
//
// Shutdown waits for every worker to exit. A timeout <= 0 waits forever;
// otherwise ErrShutdownTimeout is returned on expiry while the workers keep
// stopping in the background (see Done). Calling Shutdown on a pool that is
// already shutting down or stopped returns ErrPoolShutdown.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.lifecycle.Lock()
	if p.State() != StateRunning {
		p.lifecycle.Unlock()
		return ErrPoolShutdown
	}
	p.state.Store(int32(StateShuttingDown))
	p.queue.Close()
	p.lifecycle.Unlock()

	if !p.cfg.drainOnShutdown {
		p.cancel()
	}

	p.logger.Info("pool shutting down",
		zap.Int("queued", p.queue.Len()),
		zap.Bool("drain", p.cfg.drainOnShutdown),
		zap.Duration("timeout", timeout),
	)

	if err := waitUntil(p.done, timeout); err != nil {
		p.logger.Warn("pool shutdown timed out", zap.Duration("timeout", timeout))
		return err
	}
	return nil
}

// Close shuts the pool down and waits for every worker to exit.
// It is safe to call more than once and after Shutdown.
func (p *Pool) Close() error {
	err := p.Shutdown(0)
	if errors.Is(err, ErrPoolShutdown) {
		<-p.done
		return nil
	}
	return err
}

// markIdleLocked wakes Join waiters when the pool has become quiescent.
// p.mu must be held.
func (p *Pool) markIdleLocked() {
	if p.queued == 0 && p.active == 0 {
		p.idle.Broadcast()
	}
}
