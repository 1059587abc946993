// Package metrics defines and registers all custom Prometheus metrics for
// the kodbank service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default Prometheus registry on
// package import; the /metrics endpoint is wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kodbank"

// ── Login / issuance metrics ─────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsIssuedTotal counts session records created at login.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session tokens issued.",
	},
)

// SessionsRevokedTotal counts session records removed before natural expiry.
// Label:
//   - source: "logout", "cascade" (owner removed), or "sweep"
var SessionsRevokedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of session records deleted, by source.",
	},
	[]string{"source"},
)

// ── Validation metrics ───────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected validations by internal reason. The
// HTTP response never distinguishes these; this counter is where the
// precise diagnostics live.
// Label:
//   - reason: "missing", "malformed", "signature", "expired", "revoked", "store_error"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected token validations, by internal reason.",
	},
	[]string{"reason"},
)

// ── Sweep metrics ────────────────────────────────────────────────────────────

// SessionsSweptTotal counts expired records removed by the background sweep.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired session records deleted by the sweeper.",
	},
)

// SweepDuration measures how long a single sweep pass takes.
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of one expired-session sweep pass.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
