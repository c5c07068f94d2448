package config_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/taskqueue/internal/config"
)

var _ = Describe("Config", func() {
	var fs *pflag.FlagSet

	BeforeEach(func() {
		fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.RegisterFlags(fs)
	})

	Context("Default", func() {
		It("should apply struct defaults", func() {
			cfg := config.Default()

			Expect(cfg.Workers).To(Equal(0))
			Expect(cfg.Tasks).To(Equal(10000))
			Expect(cfg.Size).To(Equal(1000))
			Expect(cfg.Workload).To(Equal("log10"))
			Expect(cfg.Queues).To(Equal([]string{"blocking", "ring"}))
			Expect(cfg.Iterations).To(Equal(3))
			Expect(cfg.RingCapacity).To(Equal(65536))
			Expect(cfg.OutputFormat).To(Equal("table"))
			Expect(cfg.MetricsAddr).To(BeEmpty())
			Expect(cfg.LogLevel).To(Equal("info"))
			Expect(cfg.LogFormat).To(Equal("console"))
		})

		It("should be valid", func() {
			cfg := config.Default()
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Context("Load", func() {
		// Given no flags, env or file
		// When the configuration is loaded
		// Then it should equal the defaults
		It("should return defaults when nothing is set", func() {
			cfg, err := config.Load(fs, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(*cfg).To(Equal(config.Default()))
		})

		It("should read values from flags", func() {
			Expect(fs.Parse([]string{
				"--workers", "4",
				"--tasks", "500",
				"--queues", "ring",
				"--ring-capacity", "128",
				"-o", "json",
			})).To(Succeed())

			cfg, err := config.Load(fs, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Workers).To(Equal(4))
			Expect(cfg.Tasks).To(Equal(500))
			Expect(cfg.Queues).To(Equal([]string{"ring"}))
			Expect(cfg.RingCapacity).To(Equal(128))
			Expect(cfg.OutputFormat).To(Equal("json"))
		})

		It("should read values from the environment", func() {
			GinkgoT().Setenv("TASKQUEUE_ITERATIONS", "7")
			GinkgoT().Setenv("TASKQUEUE_WORKLOAD", "sleep")

			cfg, err := config.Load(fs, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Iterations).To(Equal(7))
			Expect(cfg.Workload).To(Equal("sleep"))
		})

		It("should let flags override the environment", func() {
			GinkgoT().Setenv("TASKQUEUE_TASKS", "900")
			Expect(fs.Parse([]string{"--tasks", "20"})).To(Succeed())

			cfg, err := config.Load(fs, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Tasks).To(Equal(20))
		})

		Context("with a config file", func() {
			var path string

			BeforeEach(func() {
				path = filepath.Join(GinkgoT().TempDir(), "bench.yaml")
				content := []byte("workers: 2\nworkload: noop\nqueues:\n  - blocking\nlog_format: json\n")
				Expect(os.WriteFile(path, content, 0o600)).To(Succeed())
			})

			It("should read values from the file", func() {
				cfg, err := config.Load(fs, path)

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Workers).To(Equal(2))
				Expect(cfg.Workload).To(Equal("noop"))
				Expect(cfg.Queues).To(Equal([]string{"blocking"}))
				Expect(cfg.LogFormat).To(Equal("json"))
				Expect(cfg.Tasks).To(Equal(10000))
			})

			It("should let the environment override the file", func() {
				GinkgoT().Setenv("TASKQUEUE_WORKERS", "6")

				cfg, err := config.Load(fs, path)

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Workers).To(Equal(6))
			})
		})

		It("should fail on a missing file", func() {
			_, err := config.Load(fs, filepath.Join(GinkgoT().TempDir(), "missing.yaml"))

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("reading config file"))
		})

		It("should reject invalid values", func() {
			Expect(fs.Parse([]string{"--workload", "fibonacci"})).To(Succeed())

			_, err := config.Load(fs, "")

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Context("Validate", func() {
		DescribeTable("invalid configurations",
			func(mutate func(c *config.Config), message string) {
				cfg := config.Default()
				mutate(&cfg)

				err := cfg.Validate()

				Expect(err).To(MatchError(config.ErrInvalidConfig))
				Expect(err.Error()).To(ContainSubstring(message))
			},
			Entry("negative workers", func(c *config.Config) { c.Workers = -1 }, "workers"),
			Entry("no tasks", func(c *config.Config) { c.Tasks = 0 }, "tasks"),
			Entry("negative size", func(c *config.Config) { c.Size = -5 }, "size"),
			Entry("no iterations", func(c *config.Config) { c.Iterations = 0 }, "iterations"),
			Entry("zero ring capacity", func(c *config.Config) { c.RingCapacity = 0 }, "ring_capacity"),
			Entry("unknown workload", func(c *config.Config) { c.Workload = "bogus" }, "workload"),
			Entry("no queues", func(c *config.Config) { c.Queues = nil }, "queue"),
			Entry("unknown queue", func(c *config.Config) { c.Queues = []string{"heap"} }, "heap"),
			Entry("unknown output", func(c *config.Config) { c.OutputFormat = "xml" }, "output format"),
			Entry("unknown log format", func(c *config.Config) { c.LogFormat = "logfmt" }, "log format"),
			Entry("unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
		)
	})

	Context("YAML", func() {
		It("should round-trip through the YAML dump", func() {
			cfg := config.Default()
			cfg.MetricsAddr = ":9090"

			out, err := cfg.YAML()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(ContainSubstring("ring_capacity: 65536"))

			var decoded config.Config
			Expect(yaml.Unmarshal(out, &decoded)).To(Succeed())
			Expect(decoded).To(Equal(cfg))
		})
	})
})
