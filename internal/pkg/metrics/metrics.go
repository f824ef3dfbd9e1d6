// Package metrics defines and registers all custom Prometheus metrics for the
// SkillSphere web front end. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skillsphere"

// ── Guard & session metrics ──────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - outcome: "pending", "render" or "redirect"
//   - route: the echo route path (e.g. "/update-course/:id")
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome and route.",
	},
	[]string{"outcome", "route"},
)

// SessionResolutionsTotal counts completed session resolutions.
// Label:
//   - result: "authenticated", "anonymous", "rejected" or "store_error"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of browser session identity resolutions, by result.",
	},
	[]string{"result"},
)

// SessionResolutionDuration measures how long one resolution takes.
var SessionResolutionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_resolution_duration_seconds",
		Help:      "Duration of a session identity resolution from token lookup to settle.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ResolveQueueDepth tracks pending resolutions per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ResolveQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resolve_queue_depth",
		Help:      "Current number of resolutions pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ResolveJobsDroppedTotal counts jobs refused because the worker channel was
// full.
var ResolveJobsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_jobs_dropped_total",
		Help:      "Total number of session jobs refused because a worker channel was full.",
	},
)

// SessionRevalidationsTotal counts background re-checks of settled sessions.
// Label:
//   - result: "authenticated", "anonymous", "rejected", "store_error",
//     "expired" or "superseded"
var SessionRevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_revalidations_total",
		Help:      "Total number of settled session re-checks against the token store, by result.",
	},
	[]string{"result"},
)

// ── Backend metrics ──────────────────────────────────────────────────────────

// BackendRequestsTotal counts requests sent to the course backend.
// Labels:
//   - method: HTTP method
//   - status: HTTP status code, or "error" when no response was received
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the course backend API.",
	},
	[]string{"method", "status"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of course backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Course metrics ───────────────────────────────────────────────────────────

// CourseCacheTotal counts list cache lookups.
// Labels:
//   - list: "enrollments" or "instructor_courses"
//   - result: "hit" or "miss"
var CourseCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_cache_total",
		Help:      "Total number of course list cache lookups, by list and result.",
	},
	[]string{"list", "result"},
)

// CourseUpdatesTotal counts course edit submissions.
// Label:
//   - result: "updated", "invalid" or "failed"
var CourseUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_updates_total",
		Help:      "Total number of course update submissions, by result.",
	},
	[]string{"result"},
)
