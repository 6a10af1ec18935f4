package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScanQueueMetrics records buffer depth and flush outcomes for a scan queue.
type ScanQueueMetrics struct {
	pending   *prometheus.GaugeVec
	flushes   *prometheus.CounterVec
	failures  *prometheus.CounterVec
	batchSize *prometheus.HistogramVec
}

// NewScanQueueMetrics registers the scan queue metrics on the provided registerer.
func NewScanQueueMetrics(reg prometheus.Registerer) *ScanQueueMetrics {
	if reg == nil {
		return &ScanQueueMetrics{}
	}
	pending := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scan_queue_pending",
		Help: "Scans buffered in memory awaiting delivery.",
	}, []string{"queue"})
	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_queue_flush_success",
		Help: "Successful scan batch deliveries.",
	}, []string{"queue"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_queue_flush_failure",
		Help: "Failed scan batch deliveries (batch re-queued).",
	}, []string{"queue"})
	batchSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_queue_batch_size",
		Help:    "Number of scans per delivered batch.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	}, []string{"queue"})
	reg.MustRegister(pending, flushes, failures, batchSize)
	return &ScanQueueMetrics{
		pending:   pending,
		flushes:   flushes,
		failures:  failures,
		batchSize: batchSize,
	}
}

// SetPending records the current buffer depth for the named queue.
func (m *ScanQueueMetrics) SetPending(queue string, size int) {
	if m == nil || m.pending == nil {
		return
	}
	m.pending.WithLabelValues(normalizeLabel(queue)).Set(float64(size))
}

// IncFlushSuccess counts a delivered batch of the given size.
func (m *ScanQueueMetrics) IncFlushSuccess(queue string, size int) {
	if m == nil || m.flushes == nil {
		return
	}
	m.flushes.WithLabelValues(normalizeLabel(queue)).Inc()
	m.batchSize.WithLabelValues(normalizeLabel(queue)).Observe(float64(size))
}

// IncFlushFailure counts a failed delivery attempt.
func (m *ScanQueueMetrics) IncFlushFailure(queue string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(queue)).Inc()
}

func normalizeLabel(queue string) string {
	if queue == "" {
		return "unknown"
	}
	return queue
}
