package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP requests by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	RecommendationCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_cache_hits_total",
		Help: "Recommendation cache hits by recommendation type",
	}, []string{"type"})

	RecommendationCacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_cache_misses_total",
		Help: "Recommendation cache misses by recommendation type",
	}, []string{"type"})

	QRSessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_session_transitions_total",
		Help: "QR login session state transitions by target status",
	}, []string{"status"})

	BehaviorEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "behavior_events_dropped_total",
		Help: "Behavior events dropped because the tracking queue was full",
	})

	ScraperRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_runs_total",
		Help: "Scraper job runs by outcome",
	}, []string{"outcome"})
)

func Init() {
	prometheus.MustRegister(
		RequestDuration,
		RecommendationCacheHits,
		RecommendationCacheMisses,
		QRSessionTransitions,
		BehaviorEventsDropped,
		ScraperRuns,
	)
}
