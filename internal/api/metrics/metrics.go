// Package metrics defines and registers all custom Prometheus metrics for the
// TaskFlow API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskflow"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts requests rejected by the authentication middleware.
// Label:
//   - reason: "missing", "malformed", "bad_signature" or "expired"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid bearer token.",
	},
	[]string{"reason"},
)

// ForbiddenTotal counts authenticated requests denied for insufficient role.
var ForbiddenTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_forbidden_total",
		Help:      "Total number of authenticated requests rejected for insufficient role.",
	},
)

// PasswordHashDuration measures bcrypt work on the hashing pool.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2},
	},
	[]string{"op"},
)

// HashQueueDepth tracks jobs waiting for a hashing worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "password_hash_queue_depth",
		Help:      "Current number of hashing jobs waiting for a worker.",
	},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
// Label:
//   - priority: "LOW", "MEDIUM" or "HIGH"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskTransitionsTotal counts task status changes.
// Label:
//   - status: the new status
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_transitions_total",
		Help:      "Total number of task status transitions, by resulting status.",
	},
	[]string{"status"},
)

// IdempotencyReplaysTotal counts task creations answered from the idempotency store.
var IdempotencyReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_idempotent_replays_total",
		Help:      "Total number of task creations replayed from an Idempotency-Key.",
	},
)
