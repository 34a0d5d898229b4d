package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SiteMetrics holds all Prometheus metrics for the site service.
// A nil *SiteMetrics is valid and records nothing.
type SiteMetrics struct {
	ClientInitTotal       *prometheus.CounterVec
	RepositoryCallsTotal  *prometheus.CounterVec
	ForeignRecordsDropped *prometheus.CounterVec
	ResolutionsTotal      *prometheus.CounterVec
	OverrideActive        prometheus.Gauge
}

// NewSiteMetrics initializes the metrics and registers them with reg.
func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	factory := promauto.With(reg)
	return &SiteMetrics{
		ClientInitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolsite",
			Subsystem: "backend",
			Name:      "client_init_total",
			Help:      "Remote client construction attempts by outcome.",
		}, []string{"outcome"}), // outcome: ready, failed
		RepositoryCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolsite",
			Subsystem: "repository",
			Name:      "calls_total",
			Help:      "Data repository calls by entity, source and outcome.",
		}, []string{"entity", "source", "outcome"}), // source: remote, fixture; outcome: ok, error, unavailable
		ForeignRecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolsite",
			Subsystem: "repository",
			Name:      "foreign_records_dropped_total",
			Help:      "Records dropped because they belonged to another school.",
		}, []string{"entity"}),
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolsite",
			Subsystem: "tenant",
			Name:      "resolutions_total",
			Help:      "Host resolutions by mode.",
		}, []string{"mode"}), // mode: tenant, platform, unknown, override
		OverrideActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "schoolsite",
			Subsystem: "tenant",
			Name:      "developer_override_active",
			Help:      "1 while a developer override is active, 0 otherwise.",
		}),
	}
}

// ClientInit records a remote client construction outcome.
func (m *SiteMetrics) ClientInit(outcome string) {
	if m == nil {
		return
	}
	m.ClientInitTotal.WithLabelValues(outcome).Inc()
}

// RepositoryCall records one façade call.
func (m *SiteMetrics) RepositoryCall(entity, source, outcome string) {
	if m == nil {
		return
	}
	m.RepositoryCallsTotal.WithLabelValues(entity, source, outcome).Inc()
}

// ForeignDropped records records filtered out for belonging to another school.
func (m *SiteMetrics) ForeignDropped(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ForeignRecordsDropped.WithLabelValues(entity).Add(float64(n))
}

// Resolution records a host resolution.
func (m *SiteMetrics) Resolution(mode string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(mode).Inc()
}

// SetOverrideActive updates the override gauge.
func (m *SiteMetrics) SetOverrideActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.OverrideActive.Set(1)
	} else {
		m.OverrideActive.Set(0)
	}
}
