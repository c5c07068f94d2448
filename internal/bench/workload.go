// Package bench measures the pool against a sequential baseline for the
// taskqueue-bench command.
package bench

import (
	"fmt"
	"math"
	"time"

	"github.com/utkarsh5026/taskqueue/pool"
)

// Task is one unit of benchmark work. Its value feeds the run checksum.
type Task func() (float64, error)

// NewTask returns the task for a named workload.
//
//   - log10: sum of log10(i) for i in [1, size)
//   - sleep: sleeps for size microseconds
//   - noop: returns immediately
func NewTask(workload string, size int) (Task, error) {
	switch workload {
	case "log10":
		return func() (float64, error) {
			return SumLog10(size), nil
		}, nil
	case "sleep":
		d := time.Duration(size) * time.Microsecond
		return func() (float64, error) {
			time.Sleep(d)
			return 1, nil
		}, nil
	case "noop":
		return func() (float64, error) {
			return 1, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown workload %q", workload)
	}
}

// SumLog10 returns the sum of log10(i) for i in [1, n).
func SumLog10(n int) float64 {
	var sum float64
	for i := 1; i < n; i++ {
		sum += math.Log10(float64(i))
	}
	return sum
}

// ParseQueueKind maps a queue name from the configuration to a pool.QueueKind.
func ParseQueueKind(name string) (pool.QueueKind, error) {
	switch name {
	case pool.QueueBlocking.String():
		return pool.QueueBlocking, nil
	case pool.QueueRing.String():
		return pool.QueueRing, nil
	default:
		return 0, fmt.Errorf("unknown queue %q", name)
	}
}
