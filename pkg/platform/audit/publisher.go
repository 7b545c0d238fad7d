package audit

import (
	"context"
	"time"

	id "quoteguard/pkg/domain"
)

// StorePublisher captures structured audit events through the storage layer
// so tests and single-node deployments can swap sinks easily.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *StorePublisher) List(ctx context.Context, ownerID id.OwnerID) ([]Event, error) {
	return p.store.ListByOwner(ctx, ownerID)
}
