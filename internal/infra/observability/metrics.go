// Package observability holds the Prometheus metrics for billfold.
// They are exposed on the callback server's /metrics endpoint when
// metrics are enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Submission Metrics ─────────────────────────────────────────────────────

// SubmissionsTotal counts invoice submissions by final outcome
// (success, error, invalid, superseded).
var SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billfold",
	Subsystem: "submit",
	Name:      "submissions_total",
	Help:      "Total invoice submissions by outcome.",
}, []string{"outcome"})

// SyncOutcomesTotal counts QuickBooks sync outcomes observed on successful
// creates (synced, failed, missing, none).
var SyncOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billfold",
	Subsystem: "submit",
	Name:      "sync_outcomes_total",
	Help:      "Total QuickBooks sync outcomes by result.",
}, []string{"result"})

// ─── Transport Metrics ──────────────────────────────────────────────────────

// CreateRequestDuration tracks latency of invoice create requests.
var CreateRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "billfold",
	Subsystem: "api",
	Name:      "create_request_seconds",
	Help:      "Latency of invoice create requests in seconds.",
	Buckets:   prometheus.DefBuckets,
})
