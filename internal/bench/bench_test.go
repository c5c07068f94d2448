package bench_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/taskqueue/internal/bench"
	"github.com/utkarsh5026/taskqueue/internal/config"
	"github.com/utkarsh5026/taskqueue/pool"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.Tasks = 64
	cfg.Size = 200
	cfg.Iterations = 2
	cfg.RingCapacity = 128
	return &cfg
}

var _ = Describe("Workloads", func() {
	It("should sum log10 over [1, n)", func() {
		Expect(bench.SumLog10(1)).To(BeZero())
		Expect(bench.SumLog10(11)).To(BeNumerically("~", math.Log10(3628800), 1e-9))
	})

	DescribeTable("NewTask",
		func(workload string, size int, want float64) {
			task, err := bench.NewTask(workload, size)
			Expect(err).NotTo(HaveOccurred())

			v, err := task()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", want, 1e-9))
		},
		Entry("log10", "log10", 11, math.Log10(3628800)),
		Entry("sleep", "sleep", 10, 1.0),
		Entry("noop", "noop", 0, 1.0),
	)

	It("should reject an unknown workload", func() {
		_, err := bench.NewTask("fibonacci", 10)
		Expect(err).To(MatchError(ContainSubstring("unknown workload")))
	})

	It("should parse queue names", func() {
		kind, err := bench.ParseQueueKind("ring")
		Expect(err).NotTo(HaveOccurred())
		Expect(kind).To(Equal(pool.QueueRing))

		kind, err = bench.ParseQueueKind("blocking")
		Expect(err).NotTo(HaveOccurred())
		Expect(kind).To(Equal(pool.QueueBlocking))

		_, err = bench.ParseQueueKind("heap")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Runner", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = smallConfig()
	})

	// Given a small log10 workload
	// When the benchmark runs against both queues
	// Then every configuration reports the same checksum and a distinct rank
	It("should measure the baseline and every queue", func() {
		runner := bench.NewRunner(cfg)
		Expect(runner.Steps()).To(Equal(6))
		Expect(runner.Workers()).To(Equal(2))

		report, err := runner.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Results).To(HaveLen(3))
		Expect(report.Results[0].Name).To(Equal(bench.SequentialName))
		Expect(report.Results[1].Name).To(Equal("blocking"))
		Expect(report.Results[2].Name).To(Equal("ring"))

		want := float64(cfg.Tasks) * bench.SumLog10(cfg.Size)
		ranks := map[int]bool{}
		for _, r := range report.Results {
			Expect(r.Checksum).To(BeNumerically("~", want, 1e-6))
			Expect(r.AvgTime).To(BeNumerically(">", 0))
			Expect(r.MinTime).To(BeNumerically("<=", r.AvgTime))
			Expect(r.MaxTime).To(BeNumerically(">=", r.AvgTime))
			Expect(r.AvgTimeStr).NotTo(BeEmpty())
			ranks[r.Rank] = true
		}
		Expect(ranks).To(HaveLen(3))
		Expect(report.Results[0].Speedup).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("should default workers to GOMAXPROCS", func() {
		cfg.Workers = 0
		Expect(bench.NewRunner(cfg).Workers()).To(BeNumerically(">=", 1))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := bench.NewRunner(cfg).Run(ctx)

		Expect(err).To(MatchError(context.Canceled))
	})

	It("should update pool metrics", func() {
		reg := prometheus.NewRegistry()
		m, err := pool.NewMetrics(reg, "taskqueue", "bench")
		Expect(err).NotTo(HaveOccurred())

		cfg.Queues = []string{"blocking"}
		_, err = bench.NewRunner(cfg, bench.WithRunnerMetrics(m)).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		families, err := reg.Gather()
		Expect(err).NotTo(HaveOccurred())

		submitted := 0.0
		for _, mf := range families {
			if mf.GetName() == "taskqueue_bench_tasks_submitted_total" {
				submitted = mf.GetMetric()[0].GetCounter().GetValue()
			}
		}
		Expect(submitted).To(Equal(float64(cfg.Tasks * cfg.Iterations)))
	})

	It("should drive the progress bar", func() {
		var buf bytes.Buffer
		runner := bench.NewRunner(cfg)
		bar := bench.MakeProgressBar(&buf, runner.Steps())

		_, err := bench.NewRunner(cfg, bench.WithProgressBar(bar)).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(bar.IsFinished()).To(BeTrue())
	})
})

var _ = Describe("Render", func() {
	var report *bench.Report

	BeforeEach(func() {
		var err error
		report, err = bench.NewRunner(smallConfig()).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should render a table", func() {
		var buf bytes.Buffer

		Expect(bench.Render(&buf, "table", report)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("THROUGHPUT COMPARISON"))
		Expect(out).To(ContainSubstring("sequential"))
		Expect(out).To(ContainSubstring("baseline"))
		Expect(out).To(ContainSubstring("ring"))
		Expect(out).To(ContainSubstring("Fastest queue"))
	})

	It("should render JSON", func() {
		var buf bytes.Buffer

		Expect(bench.Render(&buf, "json", report)).To(Succeed())

		var decoded map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("workload", "log10"))
		Expect(decoded["results"]).To(HaveLen(3))
	})

	It("should render YAML", func() {
		var buf bytes.Buffer

		Expect(bench.Render(&buf, "yaml", report)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("workload: log10"))
		Expect(buf.String()).To(ContainSubstring("name: sequential"))
	})

	It("should reject unknown formats", func() {
		Expect(bench.Render(io.Discard, "xml", report)).To(MatchError(ContainSubstring("unknown output format")))
	})
})

var _ = Describe("MetricsServer", func() {
	var (
		reg    *prometheus.Registry
		server *bench.MetricsServer
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		_, err := pool.NewMetrics(reg, "taskqueue", "server")
		Expect(err).NotTo(HaveOccurred())
		server = bench.NewMetricsServer("127.0.0.1:0", reg, nil)
	})

	It("should answer health checks", func() {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("ok"))
	})

	It("should expose pool metrics", func() {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("taskqueue_server_tasks_submitted_total"))
	})

	It("should serve on a real listener until shut down", func() {
		addr, err := server.Start()
		Expect(err).NotTo(HaveOccurred())

		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}

		Eventually(func() int {
			resp, err := client.Get("http://" + addr + "/healthz")
			if err != nil {
				return 0
			}
			defer resp.Body.Close()
			return resp.StatusCode
		}).WithTimeout(2 * time.Second).Should(Equal(http.StatusOK))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(server.Shutdown(ctx)).To(Succeed())

		_, err = client.Get("http://" + addr + "/healthz")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Formatting", func() {
	DescribeTable("FormatNumber",
		func(n int, want string) {
			Expect(bench.FormatNumber(n)).To(Equal(want))
		},
		Entry("zero", 0, "0"),
		Entry("three digits", 999, "999"),
		Entry("four digits", 1000, "1,000"),
		Entry("seven digits", 1234567, "1,234,567"),
		Entry("negative", -1234567, "-1,234,567"),
	)

	DescribeTable("FormatLatency",
		func(d time.Duration, want string) {
			Expect(bench.FormatLatency(d)).To(Equal(want))
		},
		Entry("zero", time.Duration(0), "0"),
		Entry("nanoseconds", 850*time.Nanosecond, "850ns"),
		Entry("whole microseconds", 12*time.Microsecond, "12µs"),
		Entry("fractional microseconds", 1500*time.Nanosecond, "1.5µs"),
		Entry("whole milliseconds", 40*time.Millisecond, "40ms"),
		Entry("fractional milliseconds", 1250*time.Microsecond, "1.25ms"),
		Entry("seconds", 2*time.Second, "2.00s"),
	)
})
