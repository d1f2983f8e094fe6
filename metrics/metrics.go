// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "starwars"

var (
	// LoaderBatches counts batched store fetches per loader key-space
	LoaderBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "batches_total",
		Help:      "Batched store fetches issued by relationship loaders.",
	}, []string{"loader"})

	// LoaderKeys counts distinct keys fetched per loader key-space
	LoaderKeys = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "keys_total",
		Help:      "Distinct keys fetched by relationship loaders.",
	}, []string{"loader"})

	// LoaderErrors counts failed batched fetches
	LoaderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "errors_total",
		Help:      "Batched store fetches that returned an error.",
	}, []string{"loader"})

	// HTTPRequests observes request latency by route pattern and status
	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Mutations counts GraphQL mutations by operation and outcome code
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graphql",
		Name:      "mutations_total",
		Help:      "GraphQL mutations by operation and result code.",
	}, []string{"operation", "code"})
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
