// Package metrics mirrors run results into Prometheus gauges, written as
// a node-exporter textfile after each run.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

// Registry owns a private Prometheus registry and the ETL gauges
// registered on it.
type Registry struct {
	reg         *prometheus.Registry
	Records     *prometheus.GaugeVec
	StageSec    *prometheus.GaugeVec
	LastSuccess *prometheus.GaugeVec
}

// NewRegistry creates a Registry with every gauge registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleximart_etl_records",
		Help: "Data quality counters of the last run, by entity and counter.",
	}, []string{"entity", "counter"})
	stageSec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleximart_etl_stage_duration_seconds",
		Help: "Wall time of the last run of each stage.",
	}, []string{"stage"})
	lastSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleximart_etl_last_success_timestamp_seconds",
		Help: "Unix time the stage last completed.",
	}, []string{"stage"})

	r.MustRegister(records, stageSec, lastSuccess)
	return &Registry{
		reg:         r,
		Records:     records,
		StageSec:    stageSec,
		LastSuccess: lastSuccess,
	}
}

// ObserveReport sets one gauge per report counter.
func (r *Registry) ObserveReport(rep *report.Report) {
	for _, sec := range rep.Sections() {
		for _, c := range sec.Counters() {
			r.Records.WithLabelValues(sec.Name, c.Key).Set(float64(c.Value))
		}
	}
}

// ObserveStage records a completed stage.
func (r *Registry) ObserveStage(stage string, took time.Duration, at time.Time) {
	r.StageSec.WithLabelValues(stage).Set(took.Seconds())
	r.LastSuccess.WithLabelValues(stage).Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes all metrics in text exposition format to path,
// atomically, creating the parent directory.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "failed to create metrics directory for %s", path)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return eris.Wrapf(err, "failed to write metrics %s", path)
	}
	logging.Debug().Str("path", path).Msg("Wrote metrics textfile")
	return nil
}
