// Package metrics defines and registers all custom Prometheus metrics for the
// dashboard gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; /metrics exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthAttemptsTotal counts calls to the Gin API authentication endpoints.
// Labels:
//   - operation: "login", "register" or "refresh"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of Gin API authentication calls, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthSharedWaitsTotal counts callers that joined an authentication already in flight.
var AuthSharedWaitsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_shared_waits_total",
		Help:      "Total number of callers that reused an in-flight login or refresh.",
	},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts authorized calls sent to the Gin API.
// Labels:
//   - method: HTTP method
//   - code: status class ("2xx", "4xx", "5xx") or "error" when no response arrived
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the Gin API.",
	},
	[]string{"method", "code"},
)

// UpstreamRequestDuration measures one upstream attempt, retries counted separately.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of a single Gin API request attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// UpstreamRetriesTotal counts 401 recoveries.
// Label:
//   - result: "recovered" (retry succeeded) or "failed"
var UpstreamRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_retries_total",
		Help:      "Total number of requests retried after a 401, by outcome.",
	},
	[]string{"result"},
)

// SessionPurgesTotal counts unrecoverable 401s that cleared the session.
var SessionPurgesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_purges_total",
		Help:      "Total number of sessions purged after an unrecoverable 401.",
	},
)

// ClientVerificationsTotal counts caller token checks.
// Label:
//   - result: "cached", "verified", "rejected" or "error"
var ClientVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_verifications_total",
		Help:      "Total number of caller token verifications, by outcome.",
	},
	[]string{"result"},
)

// ── Dashboard metrics ─────────────────────────────────────────────────────────

// SnapshotLookupsTotal counts snapshot cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var SnapshotLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_lookups_total",
		Help:      "Total number of dashboard snapshot lookups, labelled by result.",
	},
	[]string{"result"},
)

// RefreshJobsTotal counts background refresh jobs.
// Labels:
//   - kind: dashboard dataset
//   - result: "success" or "failure"
var RefreshJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_jobs_total",
		Help:      "Total number of dashboard refresh jobs, by dataset and result.",
	},
	[]string{"kind", "result"},
)

// RefreshQueueDepth tracks the number of jobs waiting in each refresher worker channel.
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of refresh jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)
