package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	entityMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_entity_mutations_total",
		Help: "Count of create, update and delete operations by entity and result",
	}, []string{"entity", "operation", "result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_lookups_total",
		Help: "Count of product cache lookups by result",
	}, []string{"result"})

	stockAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_stock_alerts_total",
		Help: "Count of low-stock alerts by stage and result",
	}, []string{"stage", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveMutation counts a write operation. result is "ok" or "error".
func ObserveMutation(entity, operation string, err error) {
	entityMutations.WithLabelValues(entity, operation, resultLabel(err)).Inc()
}

// ObserveCacheLookup counts a cache hit or miss
func ObserveCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveStockAlert counts alerts by stage: "publish" on the API side, or
// the worker outcome (notified, gone, restocked)
func ObserveStockAlert(stage string, err error) {
	stockAlerts.WithLabelValues(stage, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
