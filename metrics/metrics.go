// Package metrics exposes Prometheus instrumentation for the service,
// following the pack's api/metrics.go NewMetrics(namespace) constructor
// pattern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters/gauges the service updates as it
// processes proposals and votes. It mirrors get_scope_stats' shape so
// the two surfaces (Prometheus and the in-process stats call) stay
// consistent with each other.
type Metrics struct {
	SessionsActive     *prometheus.GaugeVec
	SessionsReached    *prometheus.CounterVec
	SessionsFailed     *prometheus.CounterVec
	VotesProcessed     *prometheus.CounterVec
	VotesRejected      *prometheus.CounterVec
	SessionsEvicted    *prometheus.CounterVec
}

// NewMetrics registers a fresh Metrics under namespace on reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the
// global default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions currently Active, by scope.",
		}, []string{"scope"}),
		SessionsReached: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_reached_total",
			Help:      "Total sessions that transitioned to ConsensusReached, by scope and result.",
		}, []string{"scope", "result"}),
		SessionsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total sessions that transitioned to Failed, by scope and reason.",
		}, []string{"scope", "reason"}),
		VotesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total votes accepted into a session, by scope.",
		}, []string{"scope"}),
		VotesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_rejected_total",
			Help:      "Total votes rejected during validation or ingestion, by scope and reason.",
		}, []string{"scope", "reason"}),
		SessionsEvicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Total sessions evicted to stay within a scope's max_sessions, by scope.",
		}, []string{"scope"}),
	}
}
