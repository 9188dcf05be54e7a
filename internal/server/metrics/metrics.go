// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Account Metrics
var (
	AvatarCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAvatarCacheLookups,
			Help: HelpTextAvatarCacheLookups,
		},
		[]string{LabelTier, LabelResult},
	)

	AvatarWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAvatarWrites,
			Help: HelpTextAvatarWrites,
		},
		[]string{LabelStorage, LabelResult},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAuthAttempts,
			Help: HelpTextAuthAttempts,
		},
		[]string{LabelOperation, LabelResult},
	)
)

// Result maps an error to the success/failure label value.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
