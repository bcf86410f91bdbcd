package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_upstream_requests_total",
			Help: "Requests sent to the public events API",
		},
		[]string{"resource", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explore_upstream_request_duration_seconds",
			Help:    "Public events API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_cache_lookups_total",
			Help: "Upstream response cache lookups",
		},
		[]string{"result"},
	)

	DedupRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_dedup_records_total",
			Help: "Records entering and leaving de-duplication",
		},
		[]string{"stage"},
	)

	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_feed_refresh_runs_total",
			Help: "Scheduled feed refresh attempts",
		},
		[]string{"feed", "outcome"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_events_published_total",
			Help: "Domain events handed to the broker",
		},
		[]string{"routing_key", "outcome"},
	)
)

func ObserveDedup(in, out int) {
	DedupRecords.WithLabelValues("in").Add(float64(in))
	DedupRecords.WithLabelValues("out").Add(float64(out))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
