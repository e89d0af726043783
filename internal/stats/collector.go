// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the service.
const (
	// Evaluation oracle metrics.
	MetricEvaluations     = "chesswatch_evaluations_total"
	MetricEvalFailures    = "chesswatch_evaluation_failures_total"
	MetricEvalSeconds     = "chesswatch_evaluation_seconds"
	MetricEvalCacheHits   = "chesswatch_eval_cache_hits_total"
	MetricEvalCacheMisses = "chesswatch_eval_cache_misses_total"

	// Review metrics.
	MetricReviews        = "chesswatch_reviews_total"
	MetricReviewFailures = "chesswatch_review_failures_total"
	MetricReviewSeconds  = "chesswatch_review_seconds"

	// Rating tracker metrics.
	MetricUpdateCycles        = "chesswatch_update_cycles_total"
	MetricUpdateCyclesChanged = "chesswatch_update_cycles_changed_total"
	MetricProviderFailures    = "chesswatch_provider_fetch_failures_total"
	MetricHistoryRows         = "chesswatch_history_rows_written_total"

	// Worker metrics.
	MetricJobsQueued = "chesswatch_jobs_queued_total"
	MetricJobsFailed = "chesswatch_jobs_failed_total"
	MetricQueueDepth = "chesswatch_worker_queue_depth"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
