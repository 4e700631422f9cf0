// Package metric provides Prometheus metrics for imgcarve.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry of carve and merge metrics
//   - collector.go: Build information collector
//
// Metrics include:
//
//   - Segment counters by format
//   - Artifact bytes and failure counters
//   - Merge fragment counters
//   - Scan duration
//
// imgcarve is a batch tool, so metrics are not served over HTTP. They are
// written once per run in the node_exporter textfile format.
package metric
