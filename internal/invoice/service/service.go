// Package service implements the integrity orchestrator: the create and
// revoke entry points that compose canonicalization, hashing, sequencing, and
// the atomic store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quoteguard/internal/artifact"
	"quoteguard/internal/directory"
	"quoteguard/internal/invoice"
	"quoteguard/internal/invoice/canonical"
	"quoteguard/internal/invoice/metrics"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/platform/sentinel"
	"quoteguard/pkg/requestcontext"
)

// Store is the persistence surface the orchestrator needs. Satisfied by
// internal/invoice/store implementations.
type Store interface {
	Create(ctx context.Context, rec *invoice.Record) error
	FindByPublicID(ctx context.Context, publicID id.PublicID) (*invoice.Record, error)
	NumberExists(ctx context.Context, owner id.OwnerID, number string) (bool, error)
	ListByOwner(ctx context.Context, owner id.OwnerID) ([]*invoice.Record, error)
	Revoke(ctx context.Context, publicID id.PublicID, info invoice.RevocationInfo) error
}

// Sequencer issues per-owner counters for invoice number synthesis.
type Sequencer interface {
	Next(ctx context.Context, owner id.OwnerID) (uint64, error)
}

// Artifacts accepts post-commit rendering jobs. Enqueue must not block.
type Artifacts interface {
	Enqueue(job artifact.Job)
}

// Service orchestrates invoice creation and revocation. Verification lives in
// internal/verification; it shares only the store read path with this type.
type Service struct {
	store     Store
	sequence  Sequencer
	owners    directory.OwnerDirectory
	clients   directory.ClientDirectory
	artifacts Artifacts
	audit     audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(
	store Store,
	sequence Sequencer,
	owners directory.OwnerDirectory,
	clients directory.ClientDirectory,
	artifacts Artifacts,
	auditPub audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		sequence:  sequence,
		owners:    owners,
		clients:   clients,
		artifacts: artifacts,
		audit:     auditPub,
		metrics:   m,
		logger:    logger,
	}
}

// Create validates the draft, synthesizes an invoice number when none was
// supplied, computes the one-time digest over the canonical form, and
// persists the record atomically. The invoice formally exists only after the
// store commit; artifact generation happens afterwards and its failures never
// surface here.
func (s *Service) Create(ctx context.Context, draft invoice.Draft) (id.PublicID, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCreate(time.Since(start)) }()

	if err := draft.Validate(); err != nil {
		return id.PublicID{}, err
	}

	owner, err := s.owners.FindOwner(ctx, draft.OwnerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.PublicID{}, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return id.PublicID{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "owner lookup failed")
	}
	client, err := s.clients.FindClient(ctx, draft.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.PublicID{}, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return id.PublicID{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "client lookup failed")
	}

	number := strings.TrimSpace(draft.Number)
	if number == "" {
		number, err = s.nextNumber(ctx, draft.OwnerID)
		if err != nil {
			return id.PublicID{}, err
		}
	}

	exists, err := s.store.NumberExists(ctx, draft.OwnerID, number)
	if err != nil {
		return id.PublicID{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice number check failed")
	}
	if exists {
		return id.PublicID{}, dErrors.New(dErrors.CodeDuplicateNumber, "invoice number already exists for this owner")
	}

	rec := invoice.NewRecord(draft, number, id.NewPublicID(), requestcontext.Now(ctx))
	rec.Digest = canonical.Digest(canonical.Encode(rec))

	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race on the unique index; the pre-check above is only
			// advisory.
			return id.PublicID{}, dErrors.New(dErrors.CodeDuplicateNumber, "invoice number already exists for this owner")
		}
		return id.PublicID{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice persistence failed")
	}

	s.metrics.IncCreated()
	s.emitAudit(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: requestcontext.Now(ctx),
		OwnerID:   rec.OwnerID,
		PublicID:  rec.PublicID.String(),
		Action:    audit.ActionInvoiceCreated,
		RequestID: requestcontext.RequestID(ctx),
	})

	s.artifacts.Enqueue(artifact.Job{
		Record:     *rec.Clone(),
		OwnerName:  directory.ResolveDisplayName(owner),
		ClientName: client.Name,
	})

	s.logger.InfoContext(ctx, "invoice created",
		"request_id", requestcontext.RequestID(ctx),
		"public_id", rec.PublicID.String(),
		"owner_id", rec.OwnerID.String(),
		"number", rec.Number,
	)
	return rec.PublicID, nil
}

// nextNumber synthesizes a per-owner collision-resistant invoice number. The
// format is an external contract, not a correctness requirement; uniqueness
// is still enforced at the store.
func (s *Service) nextNumber(ctx context.Context, owner id.OwnerID) (string, error) {
	n, err := s.sequence.Next(ctx, owner)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice sequence failed")
	}
	return fmt.Sprintf("INV-%s-%06d", owner.String(), n), nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"error", err,
		)
	}
}
