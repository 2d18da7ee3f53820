// Package observability registers the service's prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mutationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Subsystem: "pipeline",
		Name:      "mutations_total",
		Help:      "Successful task mutations by audit action.",
	}, []string{"action"})
	deniedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Subsystem: "pipeline",
		Name:      "denied_total",
		Help:      "Requests rejected by the role gate, by attempted action.",
	}, []string{"action"})
	auditFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Subsystem: "audit",
		Name:      "failures_total",
		Help:      "Committed mutations whose audit write failed. Any non-zero value needs operator attention.",
	}, []string{"action"})
	lastMutationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskboard",
		Subsystem: "pipeline",
		Name:      "last_mutation_timestamp_seconds",
		Help:      "Unix timestamp of the most recent audited mutation.",
	})
)

func init() {
	prometheus.MustRegister(mutationCounter, deniedCounter, auditFailureCounter, lastMutationGauge)
}

// RecordMutation counts a successful, audited mutation.
func RecordMutation(action string, ts time.Time) {
	mutationCounter.WithLabelValues(action).Inc()
	if !ts.IsZero() {
		lastMutationGauge.Set(float64(ts.Unix()))
	}
}

// RecordDenied counts a role-gate denial.
func RecordDenied(action string) {
	deniedCounter.WithLabelValues(action).Inc()
}

// RecordAuditFailure counts a mutation left without an audit row.
func RecordAuditFailure(action string) {
	auditFailureCounter.WithLabelValues(action).Inc()
}
