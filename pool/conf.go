package pool

import (
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QueueKind selects the queue implementation shared by the workers.
type QueueKind int

const (
	// QueueBlocking is an unbounded FIFO guarded by a mutex and a condition variable.
	// Submissions never wait for space.
	QueueBlocking QueueKind = iota

	// QueueRing is a lock-free queue of linked ring segments. It grows a new
	// segment when the current one fills, so submissions never wait for space.
	QueueRing
)

// String returns the name used for the queue kind in logs and reports.
func (k QueueKind) String() string {
	switch k {
	case QueueBlocking:
		return "blocking"
	case QueueRing:
		return "ring"
	default:
		return "unknown"
	}
}

// Option is a functional option for configuring the pool.
type Option func(*config)

type config struct {
	workerCount     int
	queueKind       QueueKind
	ringCapacity    int
	rateLimiter     *rate.Limiter
	drainOnShutdown bool
	pinCPU          bool
	logger          *zap.Logger
	metrics         *Metrics

	onTaskStart func(id int64)
	onTaskEnd   func(id int64, err error, elapsed time.Duration)
}

func defaultConfig() *config {
	return &config{
		workerCount: max(runtime.GOMAXPROCS(0), 1),
		queueKind:   QueueBlocking,
		logger:      zap.NewNop(),
	}
}

// WithWorkerCount sets the number of concurrent workers.
// Zero or negative values are ignored.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithQueue selects the queue implementation. Unknown kinds are ignored.
// If not specified, QueueBlocking is used.
func WithQueue(kind QueueKind) Option {
	return func(cfg *config) {
		switch kind {
		case QueueBlocking, QueueRing:
			cfg.queueKind = kind
		}
	}
}

// WithRingCapacity sets the size of each lock-free ring segment, rounded up to
// a power of two. It only applies with WithQueue(QueueRing) and does not limit
// how many tasks can be queued. If not specified, segments hold 65536 tasks.
func WithRingCapacity(capacity int) Option {
	return func(cfg *config) {
		if capacity > 0 {
			cfg.ringCapacity = capacity
		}
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks started per second.
// burst specifies the maximum number of tasks that can start in a burst.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithDrainOnShutdown makes Shutdown run every task already queued before
// the workers exit. Without it, queued tasks fail with ErrPoolShutdown.
func WithDrainOnShutdown() Option {
	return func(cfg *config) {
		cfg.drainOnShutdown = true
	}
}

// WithCPUPinning locks each worker to its own OS thread and, where the
// platform supports it, binds that thread to CPU (workerID mod NumCPU).
func WithCPUPinning() Option {
	return func(cfg *config) {
		cfg.pinCPU = true
	}
}

// WithLogger sets the logger for pool lifecycle events.
// Task outcomes are never logged. If not specified, nothing is logged.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics makes the workers update the given Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithOnTaskStart sets a hook called on the worker goroutine right before a task runs.
// The hook must not block for long. A panic in the hook is logged and the task
// still runs.
func WithOnTaskStart(fn func(id int64)) Option {
	return func(cfg *config) {
		cfg.onTaskStart = fn
	}
}

// WithOnTaskEnd sets a hook called on the worker goroutine after a task ran,
// with the task's error (nil on success) and its execution time.
// It runs before the task's Future becomes ready. A panic in the hook is
// logged and the Future is still settled.
func WithOnTaskEnd(fn func(id int64, err error, elapsed time.Duration)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = fn
	}
}
