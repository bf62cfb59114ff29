package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "anita"
)

var (
	validationDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

	// LMS validation metrics
	ValidationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lms_validation_runs_total",
		Help:      "Count of LMS credential validation runs.",
	}, []string{"lms_type", "status"})

	ValidationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lms_validation_duration_seconds",
		Help:      "Time taken for a full LMS validation pipeline run.",
		Buckets:   validationDurationBuckets,
	}, []string{"lms_type"})

	MissingPermissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lms_missing_permissions_total",
		Help:      "Count of permission probes that came back denied.",
	}, []string{"lms_type", "permission"})

	// Storage metrics
	ConnectionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lms_connections_created_total",
		Help:      "Count of LMS connection records persisted.",
	}, []string{"lms_type"})

	MessagesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_created_total",
		Help:      "Count of conversation messages stored.",
	}, []string{"role"})
)
