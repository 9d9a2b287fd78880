package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fund_api_request_duration_seconds",
			Help:    "Duration of requests to the upstream fund API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	upstreamRequestErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fund_api_request_errors_total",
			Help: "Transport-level failures talking to the upstream fund API.",
		},
	)

	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_events_total",
			Help: "Dashboard resource cache events.",
		},
		[]string{"resource", "event"},
	)

	manualRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_manual_refreshes_total",
			Help: "Manual refresh cycles, split by whether they ran or were coalesced into an in-flight one.",
		},
		[]string{"outcome"},
	)
)

// MustRegisterMetrics registers all application collectors with the default
// prometheus registry. Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		upstreamRequestDuration,
		upstreamRequestErrors,
		cacheEvents,
		manualRefreshes,
	)
}

// ObserveUpstreamRequest records one upstream call.
func ObserveUpstreamRequest(method string, status int, d time.Duration, err error) {
	if err != nil {
		upstreamRequestErrors.Inc()
		return
	}
	upstreamRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncCacheEvent records a cache hit, miss, invalidation or removal for a
// dashboard resource.
func IncCacheEvent(resource, event string) {
	cacheEvents.WithLabelValues(resource, event).Inc()
}

// IncManualRefresh records a manual refresh attempt.
func IncManualRefresh(coalesced bool) {
	outcome := "ran"
	if coalesced {
		outcome = "coalesced"
	}
	manualRefreshes.WithLabelValues(outcome).Inc()
}
