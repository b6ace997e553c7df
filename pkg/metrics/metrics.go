package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_settlements_total",
		Help: "The total number of settlement attempts by mode and result",
	}, []string{"mode", "result"})

	SettlementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_settlement_duration_seconds",
		Help:    "Time taken to settle a payment intent on the ledger",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // Start at 500ms with 8 buckets doubling in size
	}, []string{"mode"})

	IntentErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_intent_errors_total",
		Help: "Payment intents rejected or failed, by error kind",
	}, []string{"kind"})

	PathQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_path_queries_total",
		Help: "Path oracle queries by result",
	}, []string{"result"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_auth_failures_total",
		Help: "Bearer token verification failures by internal reason",
	}, []string{"reason"})

	CallbackDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_callback_deliveries_total",
		Help: "Confirmation callback delivery attempts by outcome",
	}, []string{"outcome"})

	StatusLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_status_lookups_total",
		Help: "Settlement status lookups by result",
	}, []string{"result"})

	LedgerSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_ledger_submissions_total",
		Help: "Ledger transaction submissions by result",
	}, []string{"result"})
)
