// Package store persists invoice records. Implementations must guarantee the
// two atomicity contracts: a record becomes visible together with its digest
// or not at all, and a revocation writes status and RevocationInfo together
// under a check-and-set on the current status.
//
// There is deliberately no delete operation on the interface. Invoices are an
// audit trail; rejection of deletion happens at the transport boundary, and
// nothing below it can express a delete.
package store

import (
	"context"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
)

// Store is the narrow persistence interface the engine requires.
// Implementations return pkg/platform/sentinel errors:
//   - Create: sentinel.ErrConflict when the public id or (owner, number)
//     unique constraint is violated
//   - FindByPublicID: sentinel.ErrNotFound for unknown identifiers
//   - Revoke: sentinel.ErrNotFound for unknown identifiers,
//     sentinel.ErrInvalidState when the record is not currently Active
type Store interface {
	Create(ctx context.Context, rec *invoice.Record) error
	FindByPublicID(ctx context.Context, publicID id.PublicID) (*invoice.Record, error)
	NumberExists(ctx context.Context, owner id.OwnerID, number string) (bool, error)
	ListByOwner(ctx context.Context, owner id.OwnerID) ([]*invoice.Record, error)
	Revoke(ctx context.Context, publicID id.PublicID, info invoice.RevocationInfo) error
}
