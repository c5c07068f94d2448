// Package config defines the configuration of the taskqueue-bench command.
//
// Values are resolved by viper in this order, highest first:
//
//	flag set on the command line
//	TASKQUEUE_* environment variable (TASKQUEUE_RING_CAPACITY, ...)
//	key in the YAML file given with --config
//	struct default (creasty/defaults tags on Config)
//
// # Configuration Structure
//
//	┌───────────────┬───────────────────┬──────────────────────────────────────────┐
//	│ Key           │ Default           │ Description                              │
//	├───────────────┼───────────────────┼──────────────────────────────────────────┤
//	│ workers       │ 0 (GOMAXPROCS)    │ Pool worker count                        │
//	│ tasks         │ 10000             │ Tasks submitted per run                  │
//	│ size          │ 1000              │ Work per task (loop length or µs)        │
//	│ workload      │ "log10"           │ log10, sleep or noop                     │
//	│ queues        │ [blocking, ring]  │ Queue implementations to compare         │
//	│ iterations    │ 3                 │ Timed runs per configuration             │
//	│ ring_capacity │ 65536             │ Segment size of the lock-free ring       │
//	│ output_format │ "table"           │ table, json or yaml                      │
//	│ metrics_addr  │ ""                │ Serve /metrics and /healthz if set       │
//	│ log_level     │ "info"            │ debug, info, warn, error                 │
//	│ log_format    │ "console"         │ console or json                          │
//	└───────────────┴───────────────────┴──────────────────────────────────────────┘
package config
