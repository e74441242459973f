// Package metrics holds the Prometheus collectors of the ledger engine.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// Operation labels.
const (
	OpPost    = "post"
	OpReverse = "reverse"
	OpClose   = "close"
)

var (
	LedgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger write operations, labeled by operation and outcome",
	}, []string{"operation", "outcome"})

	LedgerOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Latency distribution of ledger write operations",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	JournalLinesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_journal_lines_posted_total",
		Help: "Journal lines committed to the ledger",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})
)

// Outcome maps an operation result to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrUnbalanced):
		return "unbalanced"
	case errors.Is(err, apperrors.ErrInvalidLine):
		return "invalid_line"
	case errors.Is(err, apperrors.ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, apperrors.ErrAccountNotPostable):
		return "account_not_postable"
	case errors.Is(err, apperrors.ErrPeriodClosed):
		return "period_closed"
	case errors.Is(err, apperrors.ErrNoPeriod):
		return "no_period"
	case errors.Is(err, apperrors.ErrNoEquityAccount):
		return "no_equity_account"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	}
	return "error"
}

// Observe records the outcome and duration of one ledger operation.
func Observe(operation string, timer *prometheus.Timer, err error) {
	timer.ObserveDuration()
	LedgerOperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}

// StartTimer starts timing one ledger operation.
func StartTimer(operation string) *prometheus.Timer {
	return prometheus.NewTimer(LedgerOperationDuration.WithLabelValues(operation))
}
