package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records spreadsheet import outcomes.
type ImportMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_import_duration_seconds",
		Help:    "Wall time of inventory imports.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_import_rows",
		Help: "Rows processed by inventory imports.",
	}, []string{"disposition"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_import_rejected",
		Help: "Imports rejected before the upsert stage.",
	}, []string{"reason"})
	reg.MustRegister(duration, rows, rejected)
	return &ImportMetrics{
		duration: duration,
		rows:     rows,
		rejected: rejected,
	}
}

// ObserveDuration records the wall time of an import attempt.
func (m *ImportMetrics) ObserveDuration(outcome string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

// AddRows counts rows by disposition (valid, invalid, duplicate).
func (m *ImportMetrics) AddRows(disposition string, n int) {
	if m == nil || m.rows == nil {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(disposition)).Add(float64(n))
}

// IncRejected counts a rejected import by reason (parse, validation).
func (m *ImportMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
