package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transactionsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "payments_worker",
		Name:      "transactions_processed_total",
		Help:      "Transactions driven to a terminal status, by outcome.",
	},
	[]string{"status"},
)
