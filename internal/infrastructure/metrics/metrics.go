package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync daemon metrics
var (
	// Outbound backend calls
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "api_requests_total",
			Help:      "Total backend API requests",
		},
		[]string{"operation", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "api_request_duration_seconds",
			Help:      "Backend API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "poll_cycles_total",
			Help:      "Total poll cycles by poller",
		},
		[]string{"poller", "status"},
	)

	// Fetches that joined an in-flight fetch for the same key
	CoalescedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "coalesced_fetches_total",
			Help:      "Fetches served by an already in-flight fetch",
		},
		[]string{"resource"},
	)

	// Results discarded because a newer fetch already committed
	StaleResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "stale_results_total",
			Help:      "Fetch results dropped because a newer result was already applied",
		},
		[]string{"resource"},
	)

	CommentMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "comment_mutations_total",
			Help:      "Comment create, reply and delete operations",
		},
		[]string{"operation", "status"},
	)

	MessageMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "message_mutations_total",
			Help:      "Message send and delete operations",
		},
		[]string{"operation", "status"},
	)

	OptimisticRollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "optimistic_rollbacks_total",
			Help:      "Optimistic message deletes re-inserted after a server failure",
		},
	)

	UnreadTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "unread_messages",
			Help:      "Unread messages for the current user at the last poll",
		},
	)

	SessionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "session_cache_hits_total",
			Help:      "Session cache hits",
		},
		[]string{"cache_type"},
	)

	SessionCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcana",
			Subsystem: "sync",
			Name:      "session_cache_misses_total",
			Help:      "Session cache misses",
		},
		[]string{"cache_type"},
	)
)

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one backend call
func RecordAPIRequest(operation, status string, durationSec float64) {
	APIRequestsTotal.WithLabelValues(operation, status).Inc()
	APIRequestDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordPollCycle records the outcome of one poll cycle
func RecordPollCycle(poller, status string) {
	PollCyclesTotal.WithLabelValues(poller, status).Inc()
}

// RecordCoalesced records a fetch that joined one already in flight
func RecordCoalesced(resource string) {
	CoalescedFetchesTotal.WithLabelValues(resource).Inc()
}

// RecordStaleResult records a dropped out-of-order result
func RecordStaleResult(resource string) {
	StaleResultsTotal.WithLabelValues(resource).Inc()
}

// RecordCommentMutation records a comment mutation outcome
func RecordCommentMutation(operation, status string) {
	CommentMutationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordMessageMutation records a message mutation outcome
func RecordMessageMutation(operation, status string) {
	MessageMutationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRollback records an optimistic delete that was undone
func RecordRollback() {
	OptimisticRollbacksTotal.Inc()
}

// SetUnreadTotal records the latest unread total
func SetUnreadTotal(total int) {
	UnreadTotal.Set(float64(total))
}

// RecordCacheHit records a session cache hit
func RecordCacheHit(cacheType string) {
	SessionCacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a session cache miss
func RecordCacheMiss(cacheType string) {
	SessionCacheMisses.WithLabelValues(cacheType).Inc()
}

// Status returns the label used for an operation outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
