package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_transactions_total",
		Help: "Gate transactions by action and outcome.",
	}, []string{"action", "outcome"})

	denialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_gate_denials_total",
		Help: "Denied gate transactions by reason.",
	}, []string{"reason"})

	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gatepass_transaction_duration_seconds",
		Help:    "Wall time spent processing a gate transaction.",
		Buckets: prometheus.DefBuckets,
	})
)

const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

func ObserveTransaction(action, outcome string, elapsed time.Duration) {
	transactionsTotal.WithLabelValues(action, outcome).Inc()
	processingDuration.Observe(elapsed.Seconds())
}

func ObserveDenial(reason string) {
	denialsTotal.WithLabelValues(reason).Inc()
}
