// Package metrics exposes Prometheus instrumentation for the bill
// store and the export pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	billOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contas_bill_operations_total",
		Help: "Bill store operations by kind and result.",
	}, []string{"op", "result"})

	billOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contas_bill_operation_duration_seconds",
		Help:    "Latency of bill store operations, remote round trip included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	snapshotFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contas_snapshot_fallbacks_total",
		Help: "Times the store served the local snapshot because the remote list failed.",
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contas_exports_total",
		Help: "Report exports by format and result.",
	}, []string{"format", "result"})

	billEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contas_bill_events_total",
		Help: "Bill change events published to the broker.",
	}, []string{"action", "result"})
)

// ObserveBillOp records one store operation with its latency.
func ObserveBillOp(op string, start time.Time, err error) {
	billOpsTotal.WithLabelValues(op, result(err)).Inc()
	billOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveSnapshotFallback records a list served from the local snapshot.
func ObserveSnapshotFallback() {
	snapshotFallbacksTotal.Inc()
}

// ObserveExport records one report export.
func ObserveExport(format string, err error) {
	exportsTotal.WithLabelValues(format, result(err)).Inc()
}

// ObserveBillEvent records one published bill change event.
func ObserveBillEvent(action string, err error) {
	billEventsTotal.WithLabelValues(action, result(err)).Inc()
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
