// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submissions_created_total",
			Help: "Total number of submissions accepted into the issue store",
		},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of approve/reject actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issue_store_requests_total",
			Help: "Total number of issue store API calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "issue_store_request_duration_seconds",
			Help: "Duration of issue store API calls in seconds",
		},
		[]string{"operation"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_publish_failures_total",
			Help: "Approved submissions whose publish notification failed",
		},
	)

	ListingDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_decode_failures_total",
			Help: "Stored records whose payload block failed to decode during listing",
		},
	)
)
