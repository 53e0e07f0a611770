// Package metrics defines Prometheus metrics for the recipe backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SimilarityUpserts counts edge writes by outcome (created, incremented, renewed).
	SimilarityUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipify_similarity_upserts_total",
			Help: "Similarity edge upserts by outcome",
		},
		[]string{"outcome"},
	)

	SimilarityUpsertConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipify_similarity_upsert_conflicts_total",
			Help: "Duplicate-key races resolved by retrying the increment path",
		},
	)

	SimilarityUpdateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipify_similarity_update_failures_total",
			Help: "Swallowed similarity update failures by reason",
		},
		[]string{"reason"},
	)

	SimilarityUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipify_similarity_update_duration_seconds",
			Help:    "Time spent applying similarity updates for one review",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimilarityQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipify_similarity_query_duration_seconds",
			Help:    "Related-recipe lookup latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimilarityCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipify_similarity_cache_requests_total",
			Help: "Related-recipe cache lookups by result",
		},
		[]string{"result"},
	)

	SimilarityEdgesPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipify_similarity_edges_pruned_total",
			Help: "Stale similarity edges removed by the pruner",
		},
	)

	FeedDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipify_feed_degraded_total",
			Help: "Feeds composed without recommendations because a similarity query failed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		SimilarityUpserts, SimilarityUpsertConflicts,
		SimilarityUpdateFailures, SimilarityUpdateDuration,
		SimilarityQueryDuration, SimilarityCacheRequests,
		SimilarityEdgesPruned, FeedDegraded,
	)
}
