// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storynest_analysis_jobs_enqueued_total",
		Help: "Analysis jobs accepted onto the queue.",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storynest_analysis_jobs_completed_total",
		Help: "Analysis jobs that finished successfully.",
	})

	JobsRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storynest_analysis_jobs_retried_total",
		Help: "Analysis job attempts rescheduled after a failure.",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storynest_analysis_jobs_failed_total",
		Help: "Analysis jobs that exhausted their retry budget.",
	})

	QueueErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storynest_queue_errors_total",
		Help: "Queue-level errors outside job handlers.",
	})

	ClassifierFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storynest_classifier_fallbacks_total",
		Help: "Classifications served by the heuristic path, by reason.",
	}, []string{"reason"})

	RelationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storynest_relation_transitions_total",
		Help: "Relationship state transitions, by transition name.",
	}, []string{"transition"})
)
