package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quoteguard/internal/directory"
	"quoteguard/internal/invoice"
	"quoteguard/internal/invoice/canonical"
	"quoteguard/internal/verification/metrics"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/platform/sentinel"
	"quoteguard/pkg/requestcontext"
)

// Store is the read path the verifier needs. It is satisfied by the invoice
// store; verification never writes.
type Store interface {
	FindByPublicID(ctx context.Context, publicID id.PublicID) (*invoice.Record, error)
}

// Service classifies records. It is safe for concurrent use and performs no
// caching: every check recomputes the digest from the stored record.
type Service struct {
	store   Store
	owners  directory.OwnerDirectory
	audit   audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, owners directory.OwnerDirectory, auditPub audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		owners:  owners,
		audit:   auditPub,
		metrics: m,
		logger:  logger,
	}
}

// Verify runs the classification. Precedence is fixed: existence, then
// revocation, then digest comparison. An error return means the verdict could
// not be established at all (store or directory outage), never a content
// problem.
func (s *Service) Verify(ctx context.Context, publicID id.PublicID) (Result, error) {
	start := time.Now()
	checkedAt := requestcontext.Now(ctx)

	rec, err := s.store.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveVerify(string(OutcomeNotFound), time.Since(start))
			return Result{Outcome: OutcomeNotFound, CheckedAt: checkedAt}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice lookup failed")
	}

	ownerName, err := s.ownerName(ctx, rec.OwnerID)
	if err != nil {
		return Result{}, err
	}

	result := s.classify(rec, ownerName, checkedAt)

	s.metrics.ObserveVerify(string(result.Outcome), time.Since(start))
	s.emitAudit(ctx, rec, result)
	s.logger.InfoContext(ctx, "invoice verified",
		"request_id", requestcontext.RequestID(ctx),
		"public_id", publicID.String(),
		"outcome", string(result.Outcome),
	)
	return result, nil
}

func (s *Service) classify(rec *invoice.Record, ownerName string, checkedAt time.Time) Result {
	if rec.IsRevoked() {
		revokedAt := rec.Revoked.RevokedAt
		return Result{
			Outcome:       OutcomeRevoked,
			CheckedAt:     checkedAt,
			OwnerName:     ownerName,
			InvoiceNumber: rec.Number,
			IssueDate:     rec.IssueDate,
			RevokedAt:     &revokedAt,
			Reason:        rec.Revoked.Reason,
		}
	}

	if !canonical.DigestEqual(canonical.Digest(canonical.Encode(rec)), rec.Digest) {
		// A tampered record discloses nothing that could lend the forged
		// content credibility.
		return Result{
			Outcome:       OutcomeModified,
			CheckedAt:     checkedAt,
			OwnerName:     ownerName,
			InvoiceNumber: rec.Number,
		}
	}

	return Result{
		Outcome:       OutcomeVerified,
		CheckedAt:     checkedAt,
		OwnerName:     ownerName,
		InvoiceNumber: rec.Number,
		IssueDate:     rec.IssueDate,
		DueDate:       rec.DueDate,
		Currency:      rec.Currency,
		Total:         rec.Total,
	}
}

// ownerName resolves the issuer's display name. A record whose owner vanished
// from the directory is an infrastructure inconsistency, not a NotFound.
func (s *Service) ownerName(ctx context.Context, ownerID id.OwnerID) (string, error) {
	owner, err := s.owners.FindOwner(ctx, ownerID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "owner lookup failed")
	}
	return directory.ResolveDisplayName(owner), nil
}

func (s *Service) emitAudit(ctx context.Context, rec *invoice.Record, result Result) {
	event := audit.Event{
		Category:  audit.CategoryOperations,
		OwnerID:   rec.OwnerID,
		PublicID:  rec.PublicID.String(),
		Action:    audit.ActionInvoiceVerified,
		Outcome:   string(result.Outcome),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"error", err,
		)
	}
}
