package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	submissionsTotal     *prometheus.CounterVec
	starsAwarded         *prometheus.HistogramVec
	rankingCacheRequests *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalstar_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evalstar_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalstar_submissions_total",
			Help: "Task submissions by outcome.",
		}, []string{"outcome"})

		starsAwarded = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evalstar_stars_awarded",
			Help:    "Stars awarded per accepted submission.",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}, []string{"max_stars"})

		rankingCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalstar_ranking_cache_requests_total",
			Help: "Ranking cache lookups by result.",
		}, []string{"result"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalstar_events_published_total",
			Help: "Domain events published by transport.",
		}, []string{"transport", "status"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			submissionsTotal,
			starsAwarded,
			rankingCacheRequests,
			eventsPublishedTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Submissions exposes the submission outcome counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// StarsAwarded exposes the stars histogram, labelled by the task's maximum.
func StarsAwarded() *prometheus.HistogramVec {
	RegisterMetrics()
	return starsAwarded
}

// RankingCacheRequests exposes the ranking cache counter.
func RankingCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return rankingCacheRequests
}

// EventsPublished exposes the event publishing counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
