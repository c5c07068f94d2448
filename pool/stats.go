package pool

// State is the lifecycle state of a pool. It only ever moves forward:
// StateRunning, then StateShuttingDown, then StateStopped.
type State int32

const (
	// StateRunning accepts submissions and executes tasks.
	StateRunning State = iota
	// StateShuttingDown rejects submissions; workers are finishing.
	StateShuttingDown
	// StateStopped means every worker has exited.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of a pool.
type Stats struct {
	State   State
	Workers int
	// Queued is the number of tasks submitted but not yet taken by a worker.
	Queued int
	// Active is the number of tasks being executed right now.
	Active int

	Submitted uint64
	Completed uint64
	Failed    uint64
	Discarded uint64
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued, active := p.queued, p.active
	p.mu.Unlock()

	return Stats{
		State:     p.State(),
		Workers:   p.cfg.workerCount,
		Queued:    queued,
		Active:    active,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Discarded: p.discarded.Load(),
	}
}
