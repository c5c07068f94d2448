package pool

import (
	"testing"
	"time"
)

// queueConfig defines a test configuration for a queue implementation
type queueConfig struct {
	name string
	opts []Option
}

// getAllQueues returns every queue implementation to test
func getAllQueues(workerCount int) []queueConfig {
	return []queueConfig{
		{
			name: "Blocking",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithQueue(QueueBlocking),
			},
		},
		{
			name: "Ring",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithQueue(QueueRing),
				WithRingCapacity(1024),
			},
		},
	}
}

// getAllQueuesWithOpts returns every queue implementation with additional options
func getAllQueuesWithOpts(workerCount int, additionalOpts ...Option) []queueConfig {
	base := getAllQueues(workerCount)
	for i := range base {
		base[i].opts = append(base[i].opts, additionalOpts...)
	}
	return base
}

func runQueueTest(t *testing.T, testFunc func(t *testing.T, q queueConfig), workerCount int, additionalOpts ...Option) {
	for _, q := range getAllQueuesWithOpts(workerCount, additionalOpts...) {
		t.Run(q.name, func(t *testing.T) {
			testFunc(t, q)
		})
	}
}

// newTestPool creates a pool that is closed when the test ends
func newTestPool(t *testing.T, opts ...Option) *Pool {
	t.Helper()
	p := New(opts...)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// joinWithin fails the test if Join does not return within d
func joinWithin(t *testing.T, p *Pool, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.Join()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("Join did not return within %v", d)
	}
}
