package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the invoice lifecycle.
type Metrics struct {
	Created       prometheus.Counter
	Revoked       prometheus.Counter
	RevokeDenied  *prometheus.CounterVec
	CreateLatency prometheus.Histogram
}

// New creates and registers all invoice metrics.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quoteguard_invoices_created_total",
			Help: "Total number of invoices created",
		}),
		Revoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quoteguard_invoices_revoked_total",
			Help: "Total number of invoices revoked",
		}),
		RevokeDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteguard_invoice_revoke_denied_total",
			Help: "Revocation attempts rejected, by reason",
		}, []string{"reason"}), // reason: "not_found", "validation", "forbidden", "already_revoked"
		CreateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "quoteguard_invoice_create_duration_seconds",
			Help:    "Duration of invoice creation including canonicalization and persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreate records the duration of one creation attempt.
func (m *Metrics) ObserveCreate(d time.Duration) {
	if m != nil {
		m.CreateLatency.Observe(d.Seconds())
	}
}

// IncCreated increments the created counter.
func (m *Metrics) IncCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

// IncRevoked increments the revoked counter.
func (m *Metrics) IncRevoked() {
	if m != nil {
		m.Revoked.Inc()
	}
}

// IncRevokeDenied counts a rejected revocation attempt.
func (m *Metrics) IncRevokeDenied(reason string) {
	if m != nil {
		m.RevokeDenied.WithLabelValues(reason).Inc()
	}
}
