// Package metrics holds the Prometheus collectors of the kitchen service.
// Every recorder is nil-safe so handlers can run without a registry in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kitchen"

// CoordinatorMetrics counts claim coordinator and session registry outcomes.
type CoordinatorMetrics struct {
	claims        *prometheus.CounterVec
	releases      *prometheus.CounterVec
	completions   *prometheus.CounterVec
	sessionsOpen  prometheus.Counter
	sessionsClose *prometheus.CounterVec
}

// NewCoordinatorMetrics registers the coordinator collectors on reg.
func NewCoordinatorMetrics(reg prometheus.Registerer) *CoordinatorMetrics {
	if reg == nil {
		return &CoordinatorMetrics{}
	}
	m := &CoordinatorMetrics{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Claim attempts by outcome.",
		}, []string{"outcome"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Release attempts by outcome.",
		}, []string{"outcome"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_completions_total",
			Help:      "Item completion attempts by outcome.",
		}, []string{"outcome"}),
		sessionsOpen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Kitchen worker sessions opened or reactivated.",
		}),
		sessionsClose: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Kitchen worker sessions closed, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.claims, m.releases, m.completions, m.sessionsOpen, m.sessionsClose)
	return m
}

func (m *CoordinatorMetrics) ObserveClaim(outcome string) {
	if m == nil || m.claims == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CoordinatorMetrics) ObserveRelease(outcome string) {
	if m == nil || m.releases == nil {
		return
	}
	m.releases.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CoordinatorMetrics) ObserveCompletion(outcome string) {
	if m == nil || m.completions == nil {
		return
	}
	m.completions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CoordinatorMetrics) IncSessionOpened() {
	if m == nil || m.sessionsOpen == nil {
		return
	}
	m.sessionsOpen.Inc()
}

// IncSessionClosed records a closure; reason is "logout" or "stale".
func (m *CoordinatorMetrics) IncSessionClosed(reason string) {
	if m == nil || m.sessionsClose == nil {
		return
	}
	m.sessionsClose.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
