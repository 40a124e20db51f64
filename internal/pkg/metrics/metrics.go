// Package metrics defines and registers all custom Prometheus metrics of the
// noteapp client. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init and
// are exposed by the gateway at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "noteapp"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Labels:
//   - domain: "member" or "admin"
//   - transition: "hydrate_present", "hydrate_absent", "hydrate_corrupt",
//     "hydrate_stale", "update", "profile_update", "clear"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by identity domain.",
	},
	[]string{"domain", "transition"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - domain: identity domain of the route
//   - requirement: "public", "requires_auth", "requires_anonymous"
//   - decision: "allow", "pending", "redirect_to_login", "redirect_to_home"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"domain", "requirement", "decision"},
)

// ── Interaction metrics ───────────────────────────────────────────────────────

// InteractionsTotal counts social interactions issued against the backend.
// Labels:
//   - action: "like", "save", "comments_toggle", "comments_refresh", "comment_add", "comment_delete"
//   - result: "ok", "busy", "error"
var InteractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interactions_total",
		Help:      "Total number of social interactions, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures round trips to the remote API.
// Labels:
//   - operation: backend operation name (e.g. "login", "toggle_like")
//   - status: HTTP status code, or "error" when no response was received
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the remote API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation", "status"},
)
