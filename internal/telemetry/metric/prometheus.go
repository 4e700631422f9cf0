// Package metric provides Prometheus metrics for imgcarve.
package metric

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imgcarve"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Scan metrics
	SegmentsTotal *prometheus.CounterVec // labels: format
	ScanBytes     prometheus.Counter
	ScanDuration  prometheus.Histogram

	// Artifact metrics
	ArtifactBytes    *prometheus.CounterVec // labels: format
	ArtifactFailures *prometheus.CounterVec // labels: reason

	// Merge metrics
	MergeFragments prometheus.Counter
	MergeBytes     prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		SegmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "segments_total",
			Help:      "Segments emitted by the scanner, by format",
		}, []string{"format"}),

		ScanBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "input_bytes_total",
			Help:      "Bytes of input scanned",
		}),

		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Time spent scanning one input buffer",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),

		ArtifactBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "bytes_total",
			Help:      "Segment bytes handed to the artifact writer, by format",
		}, []string{"format"}),

		ArtifactFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "failures_total",
			Help:      "Artifacts that could not be written, by reason",
		}, []string{"reason"}),

		MergeFragments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "fragments_total",
			Help:      "Fragment files appended by merge",
		}),

		MergeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "bytes_total",
			Help:      "Bytes written by merge",
		}),
	}

	r.registry.MustRegister(
		r.SegmentsTotal,
		r.ScanBytes,
		r.ScanDuration,
		r.ArtifactBytes,
		r.ArtifactFailures,
		r.MergeFragments,
		r.MergeBytes,
		NewCollector(),
	)
	return r
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// atomically, for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// ObserveScan records one scan: segments per format label, input size and
// elapsed time.
func (r *Registry) ObserveScan(counts map[string]int, inputBytes int, elapsed time.Duration) {
	for format, n := range counts {
		r.SegmentsTotal.WithLabelValues(format).Add(float64(n))
	}
	r.ScanBytes.Add(float64(inputBytes))
	r.ScanDuration.Observe(elapsed.Seconds())
}

// ObserveArtifact records bytes written for one artifact of format.
func (r *Registry) ObserveArtifact(format string, bytes int64) {
	r.ArtifactBytes.WithLabelValues(format).Add(float64(bytes))
}

// ArtifactFailed records one artifact failure.
func (r *Registry) ArtifactFailed(reason string) {
	r.ArtifactFailures.WithLabelValues(reason).Inc()
}

// ObserveMerge records one merge.
func (r *Registry) ObserveMerge(fragments int, bytes int64) {
	r.MergeFragments.Add(float64(fragments))
	r.MergeBytes.Add(float64(bytes))
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}
