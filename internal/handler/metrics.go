package handler

import (
	"fmt"
	"net/http"

	"github.com/opmeter/opmeter/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "opmeter_transactions_settled_total %d\n", snap.TransactionsSettled)
	writeMetric(w, "opmeter_transactions_rejected_total{reason=\"insufficient_balance\"} %d\n", snap.TransactionsInsufficientBalance)
	writeMetric(w, "opmeter_transactions_rejected_total{reason=\"execution_failed\"} %d\n", snap.TransactionsExecutionFailed)
	writeMetric(w, "opmeter_transaction_duration_seconds_count %d\n", snap.TransactionDurationCount)
	writeMetric(w, "opmeter_transaction_duration_seconds_sum %.6f\n", float64(snap.TransactionDurationTotalNs)/1e9)

	writeMetric(w, "opmeter_operation_cache_hits_total %d\n", snap.OperationCacheHits)
	writeMetric(w, "opmeter_operation_cache_misses_total %d\n", snap.OperationCacheMisses)

	writeMetric(w, "opmeter_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "opmeter_logins_total{status=\"failure\"} %d\n", snap.LoginsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
