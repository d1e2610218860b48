package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bananimon"

var (
	// CareActions counts completed care actions by kind.
	CareActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "care_actions_total",
			Help:      "Completed care actions",
		},
		[]string{"action"},
	)

	// Evolutions counts stage transitions by the stage reached.
	Evolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evolutions_total",
			Help:      "Stage transitions by resulting stage",
		},
		[]string{"stage"},
	)

	// SweepUpdates counts companions changed by a background sweep.
	SweepUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_updates_total",
			Help:      "Companions updated by scheduled sweeps",
		},
		[]string{"sweep"},
	)

	// SweepErrors counts per-companion failures inside a sweep.
	SweepErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_errors_total",
			Help:      "Per-companion sweep failures",
		},
		[]string{"sweep"},
	)

	// Conflicts counts writes rejected by the optimistic version check.
	Conflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "companion_conflicts_total",
			Help:      "Companion writes lost to a concurrent update",
		},
	)

	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
