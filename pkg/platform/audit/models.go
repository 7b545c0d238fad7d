package audit

import (
	"context"
	"time"

	id "quoteguard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing per category.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: invoice
	// creation and revocation. These back the never-delete audit trail.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers denied authority actions, e.g. a revocation
	// attempt by a non-owner.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging, e.g.
	// public verification checks.
	CategoryOperations EventCategory = "operations"
)

// Action names for the invoice lifecycle.
const (
	ActionInvoiceCreated      = "invoice_created"
	ActionInvoiceRevoked      = "invoice_revoked"
	ActionInvoiceRevokeDenied = "invoice_revoke_denied"
	ActionInvoiceVerified     = "invoice_verified"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	OwnerID   id.OwnerID
	PublicID  string
	Action    string
	Outcome   string
	Reason    string
	RequestID string
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOwner(ctx context.Context, ownerID id.OwnerID) ([]Event, error)
}

// Publisher is what domain services depend on. Both the store-backed
// publisher and the Kafka publisher satisfy it.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
