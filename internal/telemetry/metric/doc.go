// Package metric provides Prometheus metrics for the bil client.
//
// This package implements client-side metrics collection:
//
//   - prometheus.go: registry, transport instrumentation and snapshots
//   - collector.go: session context gauges read at scrape time
//
// Metrics include:
//
//   - Outgoing request counters and latency histograms
//   - In-flight request gauge
//   - Session operation counters by result
//
// The CLI has no scrape endpoint; `bil system metrics` prints a snapshot,
// which is most useful inside `bil shell` where counters accumulate.
package metric
