package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteguard/internal/artifact"
	"quoteguard/internal/directory"
	"quoteguard/internal/invoice"
	"quoteguard/internal/invoice/canonical"
	"quoteguard/internal/invoice/sequence"
	"quoteguard/internal/invoice/store"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/audit"
	auditmem "quoteguard/pkg/platform/audit/store/memory"
)

// recordingArtifacts captures enqueued jobs without rendering anything.
type recordingArtifacts struct {
	mu   sync.Mutex
	jobs []artifact.Job
}

func (a *recordingArtifacts) Enqueue(job artifact.Job) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jobs = append(a.jobs, job)
}

func (a *recordingArtifacts) all() []artifact.Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]artifact.Job(nil), a.jobs...)
}

type serviceFixture struct {
	store     *store.Memory
	artifacts *recordingArtifacts
	audit     *auditmem.Store
	service   *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	owners := directory.NewMemory()
	owners.PutOwner(directory.Owner{ID: 1, DisplayName: "Acme Studio", Email: "billing@acme.test"})
	owners.PutOwner(directory.Owner{ID: 2, DisplayName: "Borealis Ltd", Email: "accounts@borealis.test"})
	clients := directory.NewMemory()
	clients.PutClient(directory.Client{ID: 7, Name: "Globex", Email: "ap@globex.test"})

	invoices := store.NewMemory()
	artifacts := &recordingArtifacts{}
	auditStore := auditmem.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(invoices, sequence.NewMemory(), owners, clients, artifacts,
		audit.NewStorePublisher(auditStore), nil, logger)

	return &serviceFixture{
		store:     invoices,
		artifacts: artifacts,
		audit:     auditStore,
		service:   svc,
	}
}

func validDraft() invoice.Draft {
	return invoice.Draft{
		OwnerID:   1,
		ClientID:  7,
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Subtotal:  decimal.RequireFromString("100.00"),
		Tax:       decimal.RequireFromString("19.00"),
		Total:     decimal.RequireFromString("119.00"),
		Items: []invoice.LineItem{
			{Product: "Design sprint", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
}

func TestCreate_PersistsRecordWithDigest(t *testing.T) {
	f := newServiceFixture(t)

	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)
	require.False(t, publicID.IsNil())

	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusActive, rec.Status)
	assert.Equal(t, "INV-1-000001", rec.Number)
	// The stored digest must match a fresh recomputation, otherwise every
	// subsequent verification would report Modified.
	assert.True(t, canonical.DigestEqual(rec.Digest, canonical.Digest(canonical.Encode(rec))))
}

func TestCreate_SynthesizedNumbersIncrement(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, validDraft())
	require.NoError(t, err)
	second, err := f.service.Create(ctx, validDraft())
	require.NoError(t, err)

	recs, err := f.service.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "INV-1-000001", recs[0].Number)
	assert.Equal(t, "INV-1-000002", recs[1].Number)
	assert.NotEqual(t, first, second)
}

func TestCreate_ExplicitNumberKept(t *testing.T) {
	f := newServiceFixture(t)

	draft := validDraft()
	draft.Number = "  2026-0042  "

	publicID, err := f.service.Create(context.Background(), draft)
	require.NoError(t, err)

	rec, err := f.store.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, "2026-0042", rec.Number)
}

func TestCreate_DuplicateNumberRejected(t *testing.T) {
	f := newServiceFixture(t)

	draft := validDraft()
	draft.Number = "2026-0042"
	_, err := f.service.Create(context.Background(), draft)
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateNumber))
}

func TestCreate_InvalidDraftRejectedBeforeStore(t *testing.T) {
	f := newServiceFixture(t)

	draft := validDraft()
	draft.Currency = "euro"

	_, err := f.service.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	recs, err := f.service.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCreate_UnknownOwner(t *testing.T) {
	f := newServiceFixture(t)

	draft := validDraft()
	draft.OwnerID = 99

	_, err := f.service.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreate_UnknownClient(t *testing.T) {
	f := newServiceFixture(t)

	draft := validDraft()
	draft.ClientID = 99

	_, err := f.service.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreate_EnqueuesArtifactJob(t *testing.T) {
	f := newServiceFixture(t)

	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	jobs := f.artifacts.all()
	require.Len(t, jobs, 1)
	assert.Equal(t, publicID, jobs[0].Record.PublicID)
	assert.Equal(t, "Acme Studio", jobs[0].OwnerName)
	assert.Equal(t, "Globex", jobs[0].ClientName)
}

func TestCreate_EmitsComplianceAuditEvent(t *testing.T) {
	f := newServiceFixture(t)

	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	events, err := f.audit.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, audit.ActionInvoiceCreated, events[0].Action)
	assert.Equal(t, publicID.String(), events[0].PublicID)
}

func TestGet_OwnershipEnforced(t *testing.T) {
	f := newServiceFixture(t)

	publicID, err := f.service.Create(context.Background(), validDraft())
	require.NoError(t, err)

	rec, err := f.service.Get(context.Background(), 1, publicID)
	require.NoError(t, err)
	assert.Equal(t, publicID, rec.PublicID)

	_, err = f.service.Get(context.Background(), 2, publicID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = f.service.Get(context.Background(), 1, id.NewPublicID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
