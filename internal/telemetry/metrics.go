// Package telemetry defines the Prometheus collectors for indexing runs and
// search queries. Metrics stay local: they can be written to a node-exporter
// textfile after a run, and nothing is pushed or served.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lexsearch"

// Metrics holds the collectors, registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	IndexRunsTotal       *prometheus.CounterVec
	IndexStageDuration   *prometheus.HistogramVec
	IndexRunDuration     prometheus.Histogram
	DocumentsIndexed     prometheus.Gauge
	FilesProcessedTotal  *prometheus.CounterVec
	PartitionsSkipped    prometheus.Counter
	WorkerCrashesTotal   prometheus.Counter
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	LastRunTimestampSecs prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		IndexRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_runs_total",
				Help:      "Indexing runs by terminal outcome (completed, cancelled, failed).",
			},
			[]string{"outcome"},
		),
		IndexStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_stage_duration_seconds",
				Help:      "Duration of each indexing stage in seconds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
		IndexRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_run_duration_seconds",
				Help:      "Duration of whole indexing runs in seconds.",
				Buckets:   []float64{0.1, 1, 5, 15, 60, 300, 900, 3600},
			},
		),
		DocumentsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "documents_indexed",
				Help:      "Documents in the index written by the last completed run.",
			},
		),
		FilesProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_processed_total",
				Help:      "Partition entries processed by status (indexed, empty, missing, failed).",
			},
			[]string{"status"},
		),
		PartitionsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partitions_skipped_total",
				Help:      "Partition files skipped as missing or empty.",
			},
		),
		WorkerCrashesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_crashes_total",
				Help:      "Workers that failed as a whole.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Search queries by result type (hit, zero_result, empty_query).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search query latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of results returned per search query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_cache_hits_total",
				Help:      "Search result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_cache_misses_total",
				Help:      "Search result cache misses.",
			},
		),
		LastRunTimestampSecs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time at which the last indexing run finished.",
			},
		),
	}

	m.registry.MustRegister(
		m.IndexRunsTotal,
		m.IndexStageDuration,
		m.IndexRunDuration,
		m.DocumentsIndexed,
		m.FilesProcessedTotal,
		m.PartitionsSkipped,
		m.WorkerCrashesTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.LastRunTimestampSecs,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordStage records the duration of one indexing stage.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.IndexStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFile counts one processed partition entry.
func (m *Metrics) RecordFile(status string) {
	if m == nil {
		return
	}
	m.FilesProcessedTotal.WithLabelValues(status).Inc()
}

// RecordPartitions counts skipped partitions and crashed workers of a run.
func (m *Metrics) RecordPartitions(skipped, crashed int) {
	if m == nil {
		return
	}
	m.PartitionsSkipped.Add(float64(skipped))
	m.WorkerCrashesTotal.Add(float64(crashed))
}

// RecordRun records the terminal outcome of an indexing run. documents is
// only reported for completed runs.
func (m *Metrics) RecordRun(outcome string, documents int, d time.Duration) {
	if m == nil {
		return
	}
	m.IndexRunsTotal.WithLabelValues(outcome).Inc()
	m.IndexRunDuration.Observe(d.Seconds())
	m.LastRunTimestampSecs.SetToCurrentTime()
	if outcome == "completed" {
		m.DocumentsIndexed.Set(float64(documents))
	}
}

// RecordSearch records one query.
func (m *Metrics) RecordSearch(resultType string, results int, cached bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "miss"
	if cached {
		status = "hit"
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.WithLabelValues(status).Observe(d.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// WriteToTextfile writes every metric in the Prometheus text format to
// path, for collection by the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
