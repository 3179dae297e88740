package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Requests sent to the upstream product/cart API by operation and result.",
	}, []string{"operation", "result"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of upstream product/cart API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	PaymentIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "intents_total",
		Help:      "Payment intents requested from the payment provider by result.",
	}, []string{"result"})

	PriceCacheSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "price_cache",
		Name:      "swaps_total",
		Help:      "Price snapshots installed after a successful catalog fetch.",
	})

	PriceCacheProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "price_cache",
		Name:      "products",
		Help:      "Number of products in the current price snapshot.",
	})
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)
