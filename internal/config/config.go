package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable the configuration reads.
const EnvPrefix = "TASKQUEUE"

// Accepted values for the enumerated keys, checked by Validate.
var (
	// Workloads names the task bodies the benchmark can run.
	Workloads     = []string{"log10", "sleep", "noop"}
	// QueueNames names the pool queue implementations.
	QueueNames    = []string{"blocking", "ring"}
	OutputFormats = []string{"table", "json", "yaml"}
	LogFormats    = []string{"console", "json"}
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the benchmark configuration after flags, environment and the
// optional YAML file have been merged over the defaults.
type Config struct {
	Workers      int      `mapstructure:"workers" yaml:"workers" default:"0"`
	Tasks        int      `mapstructure:"tasks" yaml:"tasks" default:"10000"`
	Size         int      `mapstructure:"size" yaml:"size" default:"1000"`
	Workload     string   `mapstructure:"workload" yaml:"workload" default:"log10"`
	Queues       []string `mapstructure:"queues" yaml:"queues" default:"[\"blocking\",\"ring\"]"`
	Iterations   int      `mapstructure:"iterations" yaml:"iterations" default:"3"`
	RingCapacity int      `mapstructure:"ring_capacity" yaml:"ring_capacity" default:"65536"`
	OutputFormat string   `mapstructure:"output_format" yaml:"output_format" default:"table"`
	MetricsAddr  string   `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	LogLevel     string   `mapstructure:"log_level" yaml:"log_level" default:"info"`
	LogFormat    string   `mapstructure:"log_format" yaml:"log_format" default:"console"`
}

// Default returns the configuration with every struct default applied.
func Default() Config {
	var cfg Config
	// only fails on malformed default tags
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"workers":       "workers",
	"tasks":         "tasks",
	"size":          "size",
	"workload":      "workload",
	"queues":        "queues",
	"iterations":    "iterations",
	"ring-capacity": "ring_capacity",
	"output-format": "output_format",
	"metrics-addr":  "metrics_addr",
	"log-level":     "log_level",
	"log-format":    "log_format",
}

// RegisterFlags adds one flag per configuration key to fs, defaulting to Default().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.IntP("workers", "w", d.Workers, "number of pool workers (0 = GOMAXPROCS)")
	fs.IntP("tasks", "n", d.Tasks, "number of tasks per run")
	fs.Int("size", d.Size, "work per task: loop length for log10, microseconds for sleep")
	fs.String("workload", d.Workload, "workload: "+strings.Join(Workloads, ", "))
	fs.StringSlice("queues", d.Queues, "queue implementations to compare: "+strings.Join(QueueNames, ", "))
	fs.IntP("iterations", "i", d.Iterations, "timed runs per configuration")
	fs.Int("ring-capacity", d.RingCapacity, "segment size of the lock-free ring queue")
	fs.StringP("output-format", "o", d.OutputFormat, "output format: "+strings.Join(OutputFormats, ", "))
	fs.String("metrics-addr", d.MetricsAddr, "serve /metrics and /healthz on this address while running")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "log format: "+strings.Join(LogFormats, ", "))
}

// Load resolves the configuration from fs, the environment and, when
// configFile is not empty, a YAML file. fs must have been prepared with
// RegisterFlags.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for flagName, key := range flagKeys {
		f := fs.Lookup(flagName)
		if f == nil {
			return nil, fmt.Errorf("flag %q is not registered", flagName)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("binding flag %q: %w", flagName, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	// every key is bound to a flag, and the flags default to Default()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Tasks <= 0 {
		errs = append(errs, fmt.Errorf("tasks must be > 0, got %d", c.Tasks))
	}
	if c.Size < 0 {
		errs = append(errs, fmt.Errorf("size must be >= 0, got %d", c.Size))
	}
	if c.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("iterations must be > 0, got %d", c.Iterations))
	}
	if c.RingCapacity <= 0 {
		errs = append(errs, fmt.Errorf("ring_capacity must be > 0, got %d", c.RingCapacity))
	}
	if !slices.Contains(Workloads, c.Workload) {
		errs = append(errs, fmt.Errorf("unknown workload %q", c.Workload))
	}
	if len(c.Queues) == 0 {
		errs = append(errs, errors.New("at least one queue is required"))
	}
	for _, q := range c.Queues {
		if !slices.Contains(QueueNames, q) {
			errs = append(errs, fmt.Errorf("unknown queue %q", q))
		}
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("unknown output format %q", c.OutputFormat))
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// YAML renders the configuration as it would appear in a config file.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return out, nil
}
