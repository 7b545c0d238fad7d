// Package artifact generates human-facing renditions of an invoice after it
// has been committed: a printable PDF and a scannable QR code. Generation is
// best-effort and fully decoupled from creation; a failure here is logged and
// never surfaces in the creation result.
package artifact

import (
	"context"
	"log/slog"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
)

// Job carries everything a renderer needs. The record is a value copy taken
// after commit, so renderers never share memory with the store.
type Job struct {
	Record     invoice.Record
	OwnerName  string
	ClientName string
}

// Renderer produces one artifact kind for a job.
type Renderer interface {
	Render(ctx context.Context, job Job) error
}

// VerifyURL builds the sole payload this engine exposes to rendering: the
// public verification link. Never amounts, digests, or client data.
func VerifyURL(baseURL string, publicID id.PublicID) string {
	return baseURL + "/verify/" + publicID.String()
}

// Dispatcher decouples artifact generation from the request path. Enqueue
// never blocks: when the inbox is full the job is dropped with a log line,
// because a slow Chromium must not slow down invoice creation.
type Dispatcher struct {
	inbox     chan Job
	renderers []Renderer
	logger    *slog.Logger
}

func NewDispatcher(buffer int, logger *slog.Logger, renderers ...Renderer) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		inbox:     make(chan Job, buffer),
		renderers: renderers,
		logger:    logger,
	}
}

// Enqueue hands a job to the background worker.
func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.inbox <- job:
	default:
		d.logger.Warn("artifact queue full, dropping job",
			"public_id", job.Record.PublicID.String(),
		)
	}
}

// Run consumes jobs until the context is cancelled. Renderer errors are
// logged and the loop continues; they never propagate.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-d.inbox:
			for _, r := range d.renderers {
				if err := r.Render(ctx, job); err != nil {
					d.logger.Error("artifact generation failed",
						"public_id", job.Record.PublicID.String(),
						"error", err,
					)
				}
			}
		}
	}
}
