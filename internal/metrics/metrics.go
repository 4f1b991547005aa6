// Package metrics exposes prometheus gauges/counters for the mining run,
// adapted from the teacher's pool-level metrics registry down to a single
// batch job: transactions admitted/rejected, selected block weight and
// fees, and nonce-search progress.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionsAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockminer",
		Name:      "transactions_admitted_total",
		Help:      "Total mempool transactions that passed validation.",
	})

	TransactionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockminer",
		Name:      "transactions_rejected_total",
		Help:      "Total mempool transactions rejected, by reason.",
	}, []string{"reason"})

	SelectedWeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockminer",
		Name:      "selected_weight",
		Help:      "Total weight of transactions selected into the block.",
	})

	SelectedFees = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockminer",
		Name:      "selected_fees_sats",
		Help:      "Total fees collected from selected transactions, in satoshis.",
	})

	NonceSearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blockminer",
		Name:      "nonce_search_duration_seconds",
		Help:      "Wall-clock time spent searching for a valid nonce.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
	})

	NoncesTried = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockminer",
		Name:      "nonces_tried_total",
		Help:      "Total nonce values hashed across the run.",
	})

	BlockFound = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockminer",
		Name:      "block_found",
		Help:      "1 once a header meeting the target has been found.",
	})
)

func init() {
	prometheus.MustRegister(
		TransactionsAdmitted,
		TransactionsRejected,
		SelectedWeight,
		SelectedFees,
		NonceSearchDuration,
		NoncesTried,
		BlockFound,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
