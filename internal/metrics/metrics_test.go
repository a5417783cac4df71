package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

func TestObserveReport(t *testing.T) {
	rep := report.New()
	rep.Section(report.Customers).Set(report.RawRecords, 3)
	rep.Section(report.Customers).Set(report.DuplicatesRemoved, 1)
	rep.Section(report.Warehouse).Set("facts_loaded", 40)

	r := NewRegistry()
	r.ObserveReport(rep)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.Records.WithLabelValues("customers", "raw_records")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Records.WithLabelValues("customers", "duplicates_removed")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.Records.WithLabelValues("warehouse", "facts_loaded")))
}

func TestObserveStage(t *testing.T) {
	r := NewRegistry()
	at := time.Unix(1700000000, 0)
	r.ObserveStage("load", 1500*time.Millisecond, at)

	assert.Equal(t, 1.5, testutil.ToFloat64(r.StageSec.WithLabelValues("load")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.LastSuccess.WithLabelValues("load")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveStage("warehouse", time.Second, time.Unix(10, 0))

	path := filepath.Join(t.TempDir(), "textfile", "fleximart.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fleximart_etl_stage_duration_seconds{stage="warehouse"} 1`)
	assert.Contains(t, string(data), "# TYPE fleximart_etl_last_success_timestamp_seconds gauge")
}
