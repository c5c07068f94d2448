// Command taskqueue-bench compares the worker pool against a sequential
// baseline on a synthetic workload.
//
// Usage:
//
//	taskqueue-bench run --tasks 100000 --workload log10 --queues blocking,ring
//	taskqueue-bench run -o json --metrics-addr :9090
//	taskqueue-bench config --config bench.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
