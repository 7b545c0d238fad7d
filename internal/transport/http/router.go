// Package httptransport assembles the HTTP surface: public verification,
// the authenticated invoice API, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	invoicehandler "quoteguard/internal/invoice/handler"
	"quoteguard/internal/platform/metrics"
	"quoteguard/internal/platform/middleware"
	verifyhandler "quoteguard/internal/verification/handler"
)

// NewRouter wires middleware and mounts all handlers. The verification
// endpoint is deliberately outside the auth group: a verifier holds nothing
// but the public identifier.
func NewRouter(
	invoices *invoicehandler.Handler,
	verify *verifyhandler.Handler,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	verify.Register(r)
	invoices.Register(r)

	return r
}
