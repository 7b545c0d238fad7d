package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/platform/audit/store/memory"
)

func TestStorePublisher_EmitStampsTime(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := audit.NewStorePublisher(store)

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Category: audit.CategoryCompliance,
		OwnerID:  id.OwnerID(1),
		Action:   audit.ActionInvoiceCreated,
	}))

	events := store.All()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, audit.ActionInvoiceCreated, events[0].Action)
}

func TestStorePublisher_EmitKeepsExplicitTime(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := audit.NewStorePublisher(store)
	stamp := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: stamp,
		OwnerID:   id.OwnerID(2),
		Action:    audit.ActionInvoiceRevokeDenied,
	}))

	events, err := pub.List(ctx, id.OwnerID(2))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stamp, events[0].Timestamp)
}

func TestStorePublisher_ListFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := audit.NewStorePublisher(store)

	require.NoError(t, pub.Emit(ctx, audit.Event{OwnerID: id.OwnerID(1), Action: audit.ActionInvoiceCreated}))
	require.NoError(t, pub.Emit(ctx, audit.Event{OwnerID: id.OwnerID(2), Action: audit.ActionInvoiceCreated}))

	events, err := pub.List(ctx, id.OwnerID(1))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
