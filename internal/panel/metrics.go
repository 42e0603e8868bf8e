package panel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "linkbox"

// Metrics counts intent outcomes. A nil *Metrics records nothing.
type Metrics struct {
	intents    *prometheus.CounterVec
	broadcasts prometheus.Counter
	surfaces   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		intents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "intents_total",
			Help:      "Surface intents handled, by type and outcome.",
		}, []string{"type", "outcome"}),
		broadcasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "broadcasts_total",
			Help:      "Link lists pushed to surfaces.",
		}),
		surfaces: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "surfaces",
			Help:      "Registered surfaces.",
		}),
	}
}

const (
	outcomeApplied  = "applied"
	outcomeInvalid  = "invalid"
	outcomeIgnored  = "ignored"
	outcomeCanceled = "canceled"
	outcomeFailed   = "failed"
	outcomeReplied  = "replied"
)

func (m *Metrics) intent(t IntentType, outcome string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(string(t), outcome).Inc()
}

func (m *Metrics) broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) surfaceCount(n int) {
	if m == nil {
		return
	}
	m.surfaces.Set(float64(n))
}
