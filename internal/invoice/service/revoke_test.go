package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/requestcontext"
)

func TestRevoke_HappyPath(t *testing.T) {
	f := newServiceFixture(t)
	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	revokedAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), revokedAt)
	require.NoError(t, f.service.Revoke(ctx, publicID, 1, "issued in error"))

	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusRevoked, rec.Status)
	require.NotNil(t, rec.Revoked)
	assert.Equal(t, revokedAt, rec.Revoked.RevokedAt)
	assert.Equal(t, "issued in error", rec.Revoked.Reason)
}

func TestRevoke_UnknownInvoice(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.Revoke(context.Background(), id.NewPublicID(), 1, "issued in error")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRevoke_EmptyReason(t *testing.T) {
	f := newServiceFixture(t)
	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	err = f.service.Revoke(context.Background(), publicID, 1, "   ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusActive, rec.Status)
}

func TestRevoke_NonOwnerForbidden(t *testing.T) {
	f := newServiceFixture(t)
	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	err = f.service.Revoke(context.Background(), publicID, 2, "not mine to revoke")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	// The denied attempt stays on the record: still active, and a security
	// audit event names the requester.
	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusActive, rec.Status)

	events, err := f.audit.ListByOwner(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.Equal(t, audit.ActionInvoiceRevokeDenied, events[0].Action)
}

func TestRevoke_SecondAttemptKeepsFirstRevocation(t *testing.T) {
	f := newServiceFixture(t)
	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	firstAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.service.Revoke(requestcontext.WithTime(context.Background(), firstAt),
		publicID, 1, "issued in error"))

	err = f.service.Revoke(context.Background(), publicID, 1, "different reason")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	require.NotNil(t, rec.Revoked)
	assert.Equal(t, firstAt, rec.Revoked.RevokedAt)
	assert.Equal(t, "issued in error", rec.Revoked.Reason)
}

// Precondition ordering: a malformed request against a missing record reports
// NotFound, not the validation error.
func TestRevoke_NotFoundCheckedBeforeReason(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.Revoke(context.Background(), id.NewPublicID(), 1, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

// And ownership is checked before status: a non-owner probing a revoked
// record learns Forbidden, not AlreadyRevoked.
func TestRevoke_OwnershipCheckedBeforeStatus(t *testing.T) {
	f := newServiceFixture(t)
	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)
	require.NoError(t, f.service.Revoke(context.Background(), publicID, 1, "issued in error"))

	err = f.service.Revoke(context.Background(), publicID, 2, "probe")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
