package service

import (
	"context"
	"errors"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/sentinel"
)

// Get returns one record for its owner. Lookups by non-owners are rejected,
// not hidden behind NotFound: the public identifier is intentionally public,
// so leaking record existence is not a concern, but its contents are
// owner-only.
func (s *Service) Get(ctx context.Context, requester id.OwnerID, publicID id.PublicID) (*invoice.Record, error) {
	rec, err := s.store.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invoice not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice lookup failed")
	}
	if rec.OwnerID != requester {
		return nil, dErrors.New(dErrors.CodeForbidden, "invoice belongs to another owner")
	}
	return rec, nil
}

// List returns the requester's invoices in creation order.
func (s *Service) List(ctx context.Context, requester id.OwnerID) ([]*invoice.Record, error) {
	recs, err := s.store.ListByOwner(ctx, requester)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice listing failed")
	}
	return recs, nil
}
