// Package metrics holds the Prometheus collectors for HTTP traffic and
// settings lookups served over HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry all collectors in this package belong to.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// HTTPRequestsTotal counts completed requests by method, route and status.
	HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "appsettings_http_requests_total",
		Help: "Total number of HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "appsettings_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SettingsLookupsTotal counts single-key lookups by result (hit or miss).
	SettingsLookupsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "appsettings_settings_lookups_total",
		Help: "Total number of settings lookups over HTTP, by result.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveRequest records one completed request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLookup records a settings lookup.
func ObserveLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SettingsLookupsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
