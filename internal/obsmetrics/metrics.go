// Package obsmetrics exposes the wallet core's Prometheus collectors:
// RPC requests in flight, dispatch counts and latency, approval
// resolution outcomes and pending count, and session lock transitions.
//
// Grounded on internal/app/metrics/metrics.go's registry-plus-init shape,
// adapted from HTTP/function/automation subsystems to the wallet core's
// rpc/approvals/session subsystems.
package obsmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the wallet core's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	rpcInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "walletd",
			Subsystem: "rpc",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight dApp RPC requests.",
		},
	)

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletd",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of dApp RPC requests handled, by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "walletd",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of dApp RPC requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method"},
	)

	approvalsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletd",
			Subsystem: "approvals",
			Name:      "resolved_total",
			Help:      "Total number of approval tasks resolved, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	approvalsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "walletd",
			Subsystem: "approvals",
			Name:      "pending",
			Help:      "Current number of approval tasks awaiting user decision.",
		},
	)

	sessionLocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletd",
			Subsystem: "session",
			Name:      "lock_events_total",
			Help:      "Total number of session lock transitions, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	Registry.MustRegister(
		rpcInFlight,
		rpcRequests,
		rpcDuration,
		approvalsResolved,
		approvalsPending,
		sessionLocks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRPC records one dApp RPC dispatch's outcome and latency.
func RecordRPC(method, outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Microsecond
	}
	rpcRequests.WithLabelValues(method, outcome).Inc()
	rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RPCInFlight wraps a dispatch with the in-flight gauge, returning a done
// func callers should defer.
func RPCInFlight() func() {
	rpcInFlight.Inc()
	return rpcInFlight.Dec
}

// RecordApproval records an approval task's terminal outcome ("approved"
// or "rejected").
func RecordApproval(approvalType, outcome string) {
	approvalsResolved.WithLabelValues(approvalType, outcome).Inc()
}

// SetApprovalsPending updates the current pending-approvals gauge.
func SetApprovalsPending(n int) {
	approvalsPending.Set(float64(n))
}

// RecordSessionLock records a session lock transition by reason (one of
// unlocksession's manual, timeout, suspend). Only the UI bridge's manual
// lock calls it; timer and suspend locks are not counted.
func RecordSessionLock(reason string) {
	sessionLocks.WithLabelValues(reason).Inc()
}

// StatusLabel converts an HTTP status code to a coarse outcome label:
// "ok" for 2xx, otherwise "error_<status>". Nothing in this module calls
// it; the router records rpcRequests' "outcome" as "ok" or "error".
func StatusLabel(status int) string {
	if status >= 200 && status < 300 {
		return "ok"
	}
	return "error_" + strconv.Itoa(status)
}
