// Package metrics exposes Prometheus counters and histograms for the
// engine's hand lifecycle, action throughput, and Table Transaction
// Gateway behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HandsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_hands_started_total",
		Help: "Total number of hands started across all tables.",
	})

	HandsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_completed_total",
		Help: "Total number of hands completed, labeled by outcome.",
	}, []string{"outcome"}) // "showdown" or "uncontested"

	HandDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_hand_duration_seconds",
		Help:    "Wall-clock time from hand start to resolution.",
		Buckets: prometheus.DefBuckets,
	})

	ActionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_actions_processed_total",
		Help: "Total number of player actions applied, labeled by kind.",
	}, []string{"kind"})

	ActionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_action_errors_total",
		Help: "Total number of rejected player actions, labeled by error kind.",
	}, []string{"error_kind"})

	GatewayTransactionAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_gateway_transaction_attempts",
		Help:    "Number of CompareAndSwap attempts a Table Transaction Gateway transaction needed before committing.",
		Buckets: []float64{1, 2, 3, 4, 5, 10},
	})

	GatewayConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_gateway_conflicts_total",
		Help: "Total number of optimistic-concurrency conflicts observed by the Table Transaction Gateway.",
	})

	TablesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_tables_active",
		Help: "Number of tables currently in the playing state.",
	})

	PlayersSeated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_players_seated",
		Help: "Number of players currently seated across all tables.",
	})

	LedgerDebtCeilingRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_ledger_debt_ceiling_rejections_total",
		Help: "Total number of buy-ins rejected for exceeding a player's debt ceiling.",
	})
)

// RecordHandCompleted records a completed hand's outcome and duration.
func RecordHandCompleted(uncontested bool, durationSeconds float64) {
	outcome := "showdown"
	if uncontested {
		outcome = "uncontested"
	}
	HandsCompleted.WithLabelValues(outcome).Inc()
	HandDuration.Observe(durationSeconds)
}

// RecordAction records a successfully applied player action.
func RecordAction(kind string) {
	ActionsProcessed.WithLabelValues(kind).Inc()
}

// RecordActionError records a rejected player action.
func RecordActionError(errorKind string) {
	ActionErrors.WithLabelValues(errorKind).Inc()
}

// RecordGatewayTransaction records how many CompareAndSwap attempts a
// transaction needed, and bumps the conflict counter for every attempt
// beyond the first.
func RecordGatewayTransaction(attempts int) {
	GatewayTransactionAttempts.Observe(float64(attempts))
	if attempts > 1 {
		GatewayConflicts.Add(float64(attempts - 1))
	}
}
