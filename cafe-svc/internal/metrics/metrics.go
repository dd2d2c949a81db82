package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BalanceQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_balance_queries_total",
			Help: "Balance queries issued to the remote API, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	BalanceAggregation = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cafe_balance_aggregation_seconds",
			Help:    "Time spent computing an available balance.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"currency", "source"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_orders_submitted_total",
			Help: "Order submissions by outcome.",
		},
		[]string{"outcome"},
	)

	OrderSettlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_order_settlements_total",
			Help: "Settlement checks by resulting order status.",
		},
		[]string{"status"},
	)

	WorkflowFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_workflow_failures_total",
			Help: "Failed workflow actions.",
		},
		[]string{"workflow", "action"},
	)
)

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		BalanceQueries,
		BalanceAggregation,
		OrdersSubmitted,
		OrderSettlements,
		WorkflowFailures,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
