package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordRun(t *testing.T) {
	m := New()

	m.RecordRun("completed", 42, 3*time.Second)
	m.RecordRun("failed", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexRunsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexRunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DocumentsIndexed), "failed runs keep the last document count")
	assert.Equal(t, 1, testutil.CollectAndCount(m.IndexRunDuration))
}

func TestMetrics_RecordFilesAndPartitions(t *testing.T) {
	m := New()

	m.RecordFile("indexed")
	m.RecordFile("indexed")
	m.RecordFile("missing")
	m.RecordPartitions(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesProcessedTotal.WithLabelValues("indexed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesProcessedTotal.WithLabelValues("missing")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PartitionsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkerCrashesTotal))
}

func TestMetrics_RecordSearch(t *testing.T) {
	m := New()

	m.RecordSearch("hit", 5, false, time.Millisecond)
	m.RecordSearch("hit", 5, true, time.Microsecond)
	m.RecordSearch("zero_result", 0, false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordStage("refining", time.Second)
		m.RecordFile("indexed")
		m.RecordPartitions(1, 1)
		m.RecordRun("completed", 1, time.Second)
		m.RecordSearch("hit", 1, false, time.Second)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteToTextfile(t *testing.T) {
	m := New()
	m.RecordStage("processing_batches", 2*time.Second)
	path := filepath.Join(t.TempDir(), "textfile", "lexsearch.prom")

	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lexsearch_index_stage_duration_seconds_count{stage="processing_batches"} 1`)
}
