// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

// Package metrics registers the Prometheus collectors exposed on /metrics.
//
// Collectors are package-level promauto values so any package can record
// without plumbing a registry through constructors. Use the Record* helpers
// rather than the raw collectors where one exists.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Embedding Refresh Metrics
	EmbeddingRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_refresh_duration_seconds",
			Help:    "Duration of embedding artifact loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	EmbeddingRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_refresh_total",
			Help: "Total number of embedding refresh attempts by result",
		},
		[]string{"trigger", "result"}, // result: "success", "failure", "unchanged", "skipped"
	)

	EmbeddingRefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_refresh_errors_total",
			Help: "Total number of failed embedding refreshes by reason",
		},
		[]string{"reason"},
	)

	EmbeddingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful embedding refresh",
		},
	)

	// Snapshot Metrics
	SnapshotItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_snapshot_items",
			Help: "Number of items in the active embedding snapshot",
		},
	)

	SnapshotDimension = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_snapshot_dimension",
			Help: "Vector dimension of the active embedding snapshot",
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_snapshot_version",
			Help: "Monotonic version of the active embedding snapshot",
		},
	)

	SnapshotCacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_snapshot_cache_operations_total",
			Help: "Total number of warm snapshot cache operations",
		},
		[]string{"operation", "result"}, // operation: "save", "load"
	)

	// Diversity Evaluation Metrics
	DiversityEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diversity_evaluations_total",
			Help: "Total number of group diversity evaluations",
		},
		[]string{"metric", "decision"}, // decision: "accept", "reject", "no_valid_embeddings"
	)

	DiversityEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diversity_evaluation_duration_seconds",
			Help:    "Time spent computing group diversity",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"metric"},
	)

	DiversityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diversity_score",
			Help:    "Distribution of computed group diversity scores",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"metric"},
	)

	DiversityGroupSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "diversity_group_size",
			Help:    "Number of resolved items per evaluated group",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250, 500, 1000},
		},
	)

	DiversityMissingItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diversity_missing_items_total",
			Help: "Total number of requested item ids without an embedding",
		},
	)

	// Result Cache Metrics
	ResultCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diversity_result_cache_hits_total",
			Help: "Total number of diversity result cache hits",
		},
	)

	ResultCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diversity_result_cache_misses_total",
			Help: "Total number of diversity result cache misses",
		},
	)

	ResultCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "diversity_result_cache_entries",
			Help: "Current number of cached diversity results",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// File Watch Metrics
	WatchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_watch_events_total",
			Help: "Total number of artifact file events seen by the watcher",
		},
		[]string{"action"}, // action: "triggered", "debounced", "rate_limited"
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRefresh records one refresh attempt. A nil error with changed=false
// is an unchanged artifact.
func RecordRefresh(trigger string, duration time.Duration, changed bool, err error) {
	EmbeddingRefreshDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		EmbeddingRefreshTotal.WithLabelValues(trigger, "failure").Inc()
		EmbeddingRefreshErrors.WithLabelValues(refreshErrorReason(err)).Inc()
	case changed:
		EmbeddingRefreshTotal.WithLabelValues(trigger, "success").Inc()
		EmbeddingLastSuccess.Set(float64(time.Now().Unix()))
	default:
		EmbeddingRefreshTotal.WithLabelValues(trigger, "unchanged").Inc()
		EmbeddingLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRefreshSkipped records a trigger dropped because a refresh was running.
func RecordRefreshSkipped(trigger string) {
	EmbeddingRefreshTotal.WithLabelValues(trigger, "skipped").Inc()
}

// reasonError lets error types name their own metric label.
type reasonError interface {
	Reason() string
}

// refreshErrorReason keeps the label set bounded.
func refreshErrorReason(err error) string {
	var re reasonError
	if errors.As(err, &re) {
		return re.Reason()
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded"):
		return "timeout"
	case strings.Contains(msg, "context canceled"):
		return "canceled"
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	default:
		return "other"
	}
}

// UpdateSnapshotGauges publishes the shape of the active snapshot.
func UpdateSnapshotGauges(items, dimension int, version uint64) {
	SnapshotItems.Set(float64(items))
	SnapshotDimension.Set(float64(dimension))
	SnapshotVersion.Set(float64(version))
}

// RecordSnapshotCache records a warm cache save or load.
func RecordSnapshotCache(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SnapshotCacheOperations.WithLabelValues(operation, result).Inc()
}

// RecordDiversityEvaluation records one evaluated group.
func RecordDiversityEvaluation(metric string, groupSize int, score float64, reject bool, duration time.Duration) {
	decision := "accept"
	if reject {
		decision = "reject"
	}
	DiversityEvaluations.WithLabelValues(metric, decision).Inc()
	DiversityEvaluationDuration.WithLabelValues(metric).Observe(duration.Seconds())
	DiversityScore.WithLabelValues(metric).Observe(score)
	DiversityGroupSize.Observe(float64(groupSize))
}

// RecordNoValidEmbeddings records a request where no id resolved.
func RecordNoValidEmbeddings(metric string, missing int) {
	DiversityEvaluations.WithLabelValues(metric, "no_valid_embeddings").Inc()
	DiversityMissingItems.Add(float64(missing))
}

// RecordMissingItems counts requested ids that had no embedding.
func RecordMissingItems(n int) {
	if n > 0 {
		DiversityMissingItems.Add(float64(n))
	}
}

// RecordResultCache records a result cache lookup.
func RecordResultCache(hit bool, entries int) {
	if hit {
		ResultCacheHits.Inc()
	} else {
		ResultCacheMisses.Inc()
	}
	ResultCacheEntries.Set(float64(entries))
}

// RecordWatchEvent records what the watcher did with a file event.
func RecordWatchEvent(action string) {
	WatchEvents.WithLabelValues(action).Inc()
}
