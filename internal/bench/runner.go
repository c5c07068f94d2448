package bench

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/utkarsh5026/taskqueue/internal/config"
	"github.com/utkarsh5026/taskqueue/pool"
)

// SequentialName labels the single-goroutine baseline in reports.
const SequentialName = "sequential"

// Result summarizes every iteration of one configuration.
type Result struct {
	Name        string        `json:"name" yaml:"name"`
	Rank        int           `json:"rank" yaml:"rank"`
	AvgTime     time.Duration `json:"-" yaml:"-"`
	MinTime     time.Duration `json:"-" yaml:"-"`
	MaxTime     time.Duration `json:"-" yaml:"-"`
	AvgTimeStr  string        `json:"avg_time" yaml:"avg_time"`
	MinTimeStr  string        `json:"min_time" yaml:"min_time"`
	MaxTimeStr  string        `json:"max_time" yaml:"max_time"`
	TasksPerSec float64       `json:"tasks_per_sec" yaml:"tasks_per_sec"`
	Speedup     float64       `json:"speedup" yaml:"speedup"`
	Checksum    float64       `json:"checksum" yaml:"checksum"`
}

// Report is the outcome of a benchmark run.
type Report struct {
	Workload   string   `json:"workload" yaml:"workload"`
	Size       int      `json:"size" yaml:"size"`
	Tasks      int      `json:"tasks" yaml:"tasks"`
	Workers    int      `json:"workers" yaml:"workers"`
	Iterations int      `json:"iterations" yaml:"iterations"`
	Results    []Result `json:"results" yaml:"results"`
}

// Runner times the sequential baseline and the pool with every configured queue.
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *pool.Metrics
	bar     *progressbar.ProgressBar
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger passed to every pool.
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunnerMetrics makes every pool update m.
func WithRunnerMetrics(m *pool.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithProgressBar advances bar by one after every timed iteration.
func WithProgressBar(bar *progressbar.ProgressBar) RunnerOption {
	return func(r *Runner) {
		r.bar = bar
	}
}

// NewRunner creates a runner for cfg. cfg is expected to have passed Validate.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Steps returns the number of timed iterations Run performs.
func (r *Runner) Steps() int {
	return r.cfg.Iterations * (1 + len(r.cfg.Queues))
}

// Workers returns the worker count the pools are built with.
func (r *Runner) Workers() int {
	if r.cfg.Workers > 0 {
		return r.cfg.Workers
	}
	return max(runtime.GOMAXPROCS(0), 1)
}

// Run executes the benchmark. It stops between iterations when ctx is done.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	task, err := NewTask(r.cfg.Workload, r.cfg.Size)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Workload:   r.cfg.Workload,
		Size:       r.cfg.Size,
		Tasks:      r.cfg.Tasks,
		Workers:    r.Workers(),
		Iterations: r.cfg.Iterations,
	}

	r.describe("Testing: " + SequentialName)
	baseline, err := r.measure(ctx, SequentialName, func() (float64, error) {
		return r.runSequential(task)
	})
	if err != nil {
		return nil, err
	}
	report.Results = append(report.Results, baseline)

	for _, name := range r.cfg.Queues {
		kind, err := ParseQueueKind(name)
		if err != nil {
			return nil, err
		}

		r.describe("Testing: " + name)
		res, err := r.measure(ctx, name, func() (float64, error) {
			return r.runPool(kind, task)
		})
		if err != nil {
			return nil, err
		}

		if res.Checksum != baseline.Checksum {
			return nil, fmt.Errorf("%s: checksum %v does not match sequential %v", name, res.Checksum, baseline.Checksum)
		}
		report.Results = append(report.Results, res)
	}

	finalize(report)

	if r.bar != nil {
		_ = r.bar.Finish()
	}
	return report, nil
}

// measure runs fn once per iteration and aggregates the timings.
func (r *Runner) measure(ctx context.Context, name string, fn func() (float64, error)) (Result, error) {
	res := Result{Name: name}
	var total time.Duration

	for i := range r.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s: interrupted: %w", name, err)
		}

		start := time.Now()
		checksum, err := fn()
		elapsed := time.Since(start)
		if err != nil {
			return res, fmt.Errorf("%s iteration %d: %w", name, i+1, err)
		}

		r.logger.Debug("iteration finished",
			zap.String("name", name),
			zap.Int("iteration", i+1),
			zap.Duration("elapsed", elapsed),
		)

		res.Checksum = checksum
		total += elapsed
		if i == 0 || elapsed < res.MinTime {
			res.MinTime = elapsed
		}
		res.MaxTime = max(res.MaxTime, elapsed)

		if r.bar != nil {
			_ = r.bar.Add(1)
		}

		if i < r.cfg.Iterations-1 {
			runtime.GC()
		}
	}

	res.AvgTime = total / time.Duration(r.cfg.Iterations)
	if res.AvgTime > 0 {
		res.TasksPerSec = float64(r.cfg.Tasks) / res.AvgTime.Seconds()
	}
	return res, nil
}

func (r *Runner) runSequential(task Task) (float64, error) {
	var sum float64
	for range r.cfg.Tasks {
		v, err := task()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

// runPool submits every task, waits with Join and shuts the pool down.
// Values are summed in submission order so the checksum matches the baseline.
func (r *Runner) runPool(kind pool.QueueKind, task Task) (float64, error) {
	p := pool.New(
		pool.WithWorkerCount(r.Workers()),
		pool.WithQueue(kind),
		pool.WithRingCapacity(r.cfg.RingCapacity),
		pool.WithLogger(r.logger),
		pool.WithMetrics(r.metrics),
	)
	defer func() { _ = p.Close() }()

	futures := make([]*pool.Future[float64], 0, r.cfg.Tasks)
	for range r.cfg.Tasks {
		f, err := pool.Submit(p, task)
		if err != nil {
			return 0, fmt.Errorf("submitting task: %w", err)
		}
		futures = append(futures, f)
	}

	p.Join()

	var sum float64
	for _, f := range futures {
		v, err := f.Get()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (r *Runner) describe(msg string) {
	if r.bar != nil {
		r.bar.Describe(msg)
	}
}

// finalize fills speedups, ranks and the human readable durations.
func finalize(report *Report) {
	if len(report.Results) == 0 {
		return
	}
	baseline := report.Results[0].AvgTime

	for i := range report.Results {
		res := &report.Results[i]
		if res.AvgTime > 0 {
			res.Speedup = float64(baseline) / float64(res.AvgTime)
		}
		res.AvgTimeStr = FormatLatency(res.AvgTime)
		res.MinTimeStr = FormatLatency(res.MinTime)
		res.MaxTimeStr = FormatLatency(res.MaxTime)
	}

	order := make([]int, len(report.Results))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(report.Results[a].AvgTime, report.Results[b].AvgTime)
	})
	for rank, idx := range order {
		report.Results[idx].Rank = rank + 1
	}
}
