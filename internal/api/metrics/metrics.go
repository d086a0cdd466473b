// Package metrics defines and registers all custom Prometheus metrics for the
// admin gateway. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry at
// package load; the /metrics route is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_gateway"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "ok", "invalid", "role_denied", "validation", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// SessionChecksTotal counts identity checks by outcome.
// Label:
//   - result: "authenticated" or "unauthenticated"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of identity checks against the booking API, by outcome.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts. The backend call is best-effort, so the label
// distinguishes whether upstream invalidation succeeded.
// Label:
//   - upstream: "ok" or "failed"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by upstream invalidation result.",
	},
	[]string{"upstream"},
)

// UpstreamRequestDuration measures booking API round-trip time.
// Labels:
//   - method: HTTP method
//   - path: normalized upstream path (numeric segments collapsed to :id)
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the booking API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "path"},
)
