// Package metrics defines and registers the custom Prometheus metrics of the
// rental portal. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Client session metrics ────────────────────────────────────────────────────

// SessionTransitionsTotal counts lifecycle state changes.
// Labels:
//   - from, to: lifecycle states (e.g. "anonymous", "authenticating")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Total number of session lifecycle transitions.",
	},
	[]string{"from", "to"},
)

// SessionOperationsTotal counts lifecycle operations by outcome.
// Labels:
//   - op: "login", "register", "update_profile", "change_role", "logout", "restore"
//   - result: "ok", "validation", "failed"
var SessionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "operations_total",
		Help:      "Total number of session operations, by outcome.",
	},
	[]string{"op", "result"},
)

// SessionStoreDiscardsTotal counts persisted records, or whole storage files,
// dropped as unreadable.
var SessionStoreDiscardsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "store_discards_total",
		Help:      "Total number of corrupt session records or storage files treated as absent.",
	},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// AccountOperationsTotal counts directory operations served by the API.
// Labels:
//   - op: "register", "login", "update_profile", "change_role", "logout"
//   - result: "ok" or a short error reason (e.g. "invalid_credentials")
var AccountOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "accounts",
		Name:      "operations_total",
		Help:      "Total number of account directory operations, by outcome.",
	},
	[]string{"op", "result"},
)

// AccountOperationDuration measures directory operation latency.
var AccountOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "accounts",
		Name:      "operation_duration_seconds",
		Help:      "Duration of account directory operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)
