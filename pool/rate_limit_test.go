package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RateLimit_Throughput(t *testing.T) {
	// 15 tasks at 20 tasks/sec with a burst of 5:
	// the first 5 start at once, the remaining 10 take ~500ms
	runQueueTest(t, func(t *testing.T, q queueConfig) {
		p := newTestPool(t, q.opts...)

		var counter atomic.Int32
		start := time.Now()
		for range 15 {
			_, _ = p.Go(func() { counter.Add(1) })
		}
		p.Join()
		elapsed := time.Since(start)

		if counter.Load() != 15 {
			t.Fatalf("expected 15 tasks to run, got %d", counter.Load())
		}

		expectedMinDuration := 450 * time.Millisecond
		if elapsed < expectedMinDuration {
			t.Errorf("expected at least %v, got %v (rate limiting not working properly)", expectedMinDuration, elapsed)
		}

		expectedMaxDuration := 2 * time.Second
		if elapsed > expectedMaxDuration {
			t.Errorf("took too long: %v (expected less than %v)", elapsed, expectedMaxDuration)
		}
	}, 8, WithRateLimit(20, 5))
}

func TestPool_RateLimit_InvalidIgnored(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		burst int
	}{
		{name: "zero rate", rate: 0, burst: 5},
		{name: "negative rate", rate: -1, burst: 5},
		{name: "zero burst", rate: 10, burst: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			WithRateLimit(tt.rate, tt.burst)(cfg)
			if cfg.rateLimiter != nil {
				t.Error("expected invalid rate limit to be ignored")
			}
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	cfg := defaultConfig()
	WithQueue(QueueKind(99))(cfg)
	WithRingCapacity(-1)(cfg)
	WithLogger(nil)(cfg)

	if cfg.queueKind != QueueBlocking {
		t.Errorf("expected blocking queue, got %s", cfg.queueKind)
	}
	if cfg.ringCapacity != 0 {
		t.Errorf("expected default ring capacity, got %d", cfg.ringCapacity)
	}
	if cfg.logger == nil {
		t.Error("expected a no-op logger")
	}
	if QueueRing.String() != "ring" || QueueBlocking.String() != "blocking" {
		t.Errorf("unexpected queue kind names: %s, %s", QueueRing, QueueBlocking)
	}
}

func TestPool_CPUPinning(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(2), WithCPUPinning())

	f, err := Submit(p, func() (int, error) { return 7, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, err := f.Get(); err != nil || v != 7 {
		t.Errorf("expected (7, nil), got (%d, %v)", v, err)
	}
}
