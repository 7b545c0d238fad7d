package service

import (
	"context"
	"errors"
	"strings"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/platform/sentinel"
	"quoteguard/pkg/requestcontext"
)

// Revoke performs the one-way Active -> Revoked transition. Preconditions are
// checked in a fixed order: existence, non-empty reason, ownership, current
// status. Possession of the public identifier alone never authorizes
// revocation; the requester must be the record's owner.
func (s *Service) Revoke(ctx context.Context, publicID id.PublicID, requester id.OwnerID, reason string) error {
	rec, err := s.store.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncRevokeDenied("not_found")
			return dErrors.New(dErrors.CodeNotFound, "invoice not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice lookup failed")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		s.metrics.IncRevokeDenied("validation")
		return dErrors.New(dErrors.CodeInvalidInput, "revocation reason must not be empty")
	}

	if rec.OwnerID != requester {
		s.metrics.IncRevokeDenied("forbidden")
		s.emitAudit(ctx, audit.Event{
			Category:  audit.CategorySecurity,
			Timestamp: requestcontext.Now(ctx),
			OwnerID:   requester,
			PublicID:  publicID.String(),
			Action:    audit.ActionInvoiceRevokeDenied,
			Outcome:   "forbidden",
			RequestID: requestcontext.RequestID(ctx),
		})
		return dErrors.New(dErrors.CodeForbidden, "only the invoice owner may revoke it")
	}

	info := invoice.RevocationInfo{
		RevokedAt: requestcontext.Now(ctx),
		Reason:    reason,
	}
	if err := s.store.Revoke(ctx, publicID, info); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			// Either it was already revoked or a concurrent revoke won the
			// check-and-set; both read the same to the caller.
			s.metrics.IncRevokeDenied("already_revoked")
			return dErrors.New(dErrors.CodeAlreadyRevoked, "invoice is already revoked")
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.IncRevokeDenied("not_found")
			return dErrors.New(dErrors.CodeNotFound, "invoice not found")
		default:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "revocation persistence failed")
		}
	}

	s.metrics.IncRevoked()
	s.emitAudit(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: info.RevokedAt,
		OwnerID:   requester,
		PublicID:  publicID.String(),
		Action:    audit.ActionInvoiceRevoked,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "invoice revoked",
		"request_id", requestcontext.RequestID(ctx),
		"public_id", publicID.String(),
		"owner_id", requester.String(),
	)
	return nil
}
