package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/utkarsh5026/taskqueue/internal/bench"
	"github.com/utkarsh5026/taskqueue/internal/config"
	"github.com/utkarsh5026/taskqueue/pool"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "taskqueue-bench",
		Short:        "Benchmark the taskqueue worker pool",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML configuration file")
	config.RegisterFlags(root.PersistentFlags())

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark and print the comparison",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return runBench(cmd, cfg)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	root.AddCommand(runCmd, configCmd)
	root.RunE = runCmd.RunE
	return root
}

func runBench(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []bench.RunnerOption{bench.WithRunnerLogger(logger)}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := pool.NewMetrics(reg, "taskqueue", "bench")
		if err != nil {
			return err
		}
		opts = append(opts, bench.WithRunnerMetrics(m))

		srv := bench.NewMetricsServer(cfg.MetricsAddr, reg, logger)
		if _, err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	out := cmd.OutOrStdout()
	tableOutput := cfg.OutputFormat == "table"

	if tableOutput {
		runner := bench.NewRunner(cfg)
		printConfig(cmd, cfg, runner.Workers())
		opts = append(opts, bench.WithProgressBar(bench.MakeProgressBar(cmd.ErrOrStderr(), runner.Steps())))
	}

	report, err := bench.NewRunner(cfg, opts...).Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	return bench.Render(out, cfg.OutputFormat, report)
}

func printConfig(cmd *cobra.Command, cfg *config.Config, workers int) {
	w := cmd.OutOrStdout()
	_, _ = bench.Heading.Fprintln(w, "╔════════════════════════════════════════════════════════════╗")
	_, _ = bench.Heading.Fprintf(w, "║       %-52s ║\n", "TASKQUEUE POOL BENCHMARK")
	_, _ = bench.Heading.Fprintln(w, "╚════════════════════════════════════════════════════════════╝")
	_, _ = fmt.Fprintf(w, "  Workers:    %d\n", workers)
	_, _ = fmt.Fprintf(w, "  Tasks:      %s\n", bench.FormatNumber(cfg.Tasks))
	_, _ = fmt.Fprintf(w, "  Workload:   %s (size %d)\n", cfg.Workload, cfg.Size)
	_, _ = fmt.Fprintf(w, "  Queues:     %v\n", cfg.Queues)
	_, _ = fmt.Fprintf(w, "  Iterations: %d\n\n", cfg.Iterations)
}
