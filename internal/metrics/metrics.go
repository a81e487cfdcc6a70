// Package metrics holds the Prometheus collectors of the web frontend. They are
// registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devlog"

// APICallsTotal counts remote calls by action and result (ok, app_error, transport_error, mock).
var APICallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_calls_total",
		Help:      "Total number of calls made to the remote API.",
	},
	[]string{"action", "result"},
)

var APICallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_call_duration_seconds",
		Help:      "Duration of remote API calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	},
	[]string{"action"},
)

// APICallsInFlight mirrors the client's loading flag.
var APICallsInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_calls_in_flight",
		Help:      "Number of remote API calls currently running.",
	},
)

// RecordSavesTotal counts record save attempts by saga outcome.
var RecordSavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_saves_total",
		Help:      "Total number of record save attempts, by outcome.",
	},
	[]string{"outcome"},
)

var ReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_total",
		Help:      "Total number of review decisions sent, by decision.",
	},
	[]string{"decision"},
)

var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of browser requests served.",
	},
	[]string{"method", "status"},
)
