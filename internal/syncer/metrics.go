package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded on syncOperationsTotal.
const (
	outcomeSettled    = "settled"
	outcomeFailed     = "failed"
	outcomeSuppressed = "suppressed"
)

var (
	syncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "operations_total",
			Help:      "Collection operations by kind, operation and outcome",
		},
		[]string{"kind", "op", "outcome"},
	)

	syncStaleSettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "stale_settlements_total",
			Help:      "Server collections discarded because a later call was already applied",
		},
		[]string{"kind"},
	)

	syncFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "fetches_total",
			Help:      "Full collection fetches by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)
