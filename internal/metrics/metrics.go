// Package metrics counts batch progress with Prometheus collectors and writes
// them to a node_exporter textfile when a run finishes.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vadscribe"

// Status labels for FilesTotal.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recorder owns one registry per process run. A nil Recorder discards
// observations so callers never need to guard.
type Recorder struct {
	registry *prometheus.Registry

	files         *prometheus.CounterVec
	spans         prometheus.Counter
	chunks        prometheus.Counter
	unitsRejected prometheus.Counter
	recognizeFail prometheus.Counter
	fileSeconds   *prometheus.HistogramVec
	lastRun       *prometheus.GaugeVec
}

// New registers the vadscribe collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Source files processed, by stage and outcome.",
		}, []string{"stage", "status"}),
		spans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spans_total",
			Help:      "Speech spans detected.",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Transcript chunks produced by merging.",
		}),
		unitsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_rejected_total",
			Help:      "Recognition units rejected as malformed.",
		}),
		recognizeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognize_failures_total",
			Help:      "Chunk recognition calls that failed.",
		}),
		fileSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Wall time spent per source file.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 7),
		}, []string{"stage"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run of a command finished.",
		}, []string{"command"}),
	}
	r.registry.MustRegister(r.files, r.spans, r.chunks, r.unitsRejected, r.recognizeFail, r.fileSeconds, r.lastRun)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// File records one file outcome for a stage.
func (r *Recorder) File(stage, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(stage, status).Inc()
	r.fileSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Spans adds detected spans.
func (r *Recorder) Spans(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.spans.Add(float64(n))
}

// Chunks adds merged transcript chunks.
func (r *Recorder) Chunks(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.chunks.Add(float64(n))
}

// UnitsRejected adds malformed units.
func (r *Recorder) UnitsRejected(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.unitsRejected.Add(float64(n))
}

// RecognizeFailed counts one failed recognition call.
func (r *Recorder) RecognizeFailed() {
	if r == nil {
		return
	}
	r.recognizeFail.Inc()
}

// Finish stamps the completion time of command.
func (r *Recorder) Finish(command string, at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.WithLabelValues(command).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text exposition format. An empty path
// is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
