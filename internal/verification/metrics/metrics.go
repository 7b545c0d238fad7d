package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the public verification path.
type Metrics struct {
	Outcomes      *prometheus.CounterVec
	VerifyLatency prometheus.Histogram
}

// New creates and registers all verification metrics.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteguard_verifications_total",
			Help: "Verification checks by outcome",
		}, []string{"outcome"}), // outcome: "verified", "revoked", "modified", "not_found"
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "quoteguard_verification_duration_seconds",
			Help:    "Duration of one verification including digest recomputation",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// ObserveVerify records one completed check.
func (m *Metrics) ObserveVerify(outcome string, d time.Duration) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
		m.VerifyLatency.Observe(d.Seconds())
	}
}
