package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes.
const (
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeError       = "error"
	OutcomeUnsupported = "unsupported"
)

// LookupMetrics counts postal code lookups per provider and outcome.
type LookupMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
}

// NewLookupMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewLookupMetrics(namespace string, reg prometheus.Registerer) *LookupMetrics {
	if namespace == "" {
		namespace = "address_api"
	}

	m := &LookupMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postal_lookups_total",
				Help:      "Total number of postal code lookups",
			},
			[]string{"provider", "outcome"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "postal_lookup_duration_seconds",
				Help:      "Postal code lookup duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.lookupsTotal, m.lookupDuration)
	}

	return m
}

// Observe records one lookup.
func (m *LookupMetrics) Observe(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeUnsupported {
		m.lookupDuration.WithLabelValues(provider).Observe(seconds)
	}
}

// Count returns the counter for provider and outcome.
func (m *LookupMetrics) Count(provider, outcome string) prometheus.Counter {
	return m.lookupsTotal.WithLabelValues(provider, outcome)
}
