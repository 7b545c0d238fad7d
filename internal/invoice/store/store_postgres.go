package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/sentinel"
)

// Postgres persists invoice records in PostgreSQL. Atomicity contracts map
// onto the database directly: creation runs in one transaction, revocation is
// a single UPDATE predicated on the current status, and the unique indexes on
// public_id and (owner_id, number) back the application-level checks.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, rec *invoice.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create invoice: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rowID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invoices (
			public_id, owner_id, client_id, number,
			issue_date, due_date, currency,
			subtotal, tax, total,
			created_at, digest, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		rec.PublicID.String(), int64(rec.OwnerID), int64(rec.ClientID), rec.Number,
		rec.IssueDate, rec.DueDate, rec.Currency,
		rec.Subtotal, rec.Tax, rec.Total,
		rec.CreatedAt, rec.Digest, string(rec.Status),
	).Scan(&rowID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for pos, item := range rec.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, position, product, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, rowID, pos, item.Product, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create invoice: %w", err)
	}
	return nil
}

func (s *Postgres) FindByPublicID(ctx context.Context, publicID id.PublicID) (*invoice.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, public_id, owner_id, client_id, number,
		       issue_date, due_date, currency,
		       subtotal, tax, total,
		       created_at, digest, status, revoked_at, revocation_reason
		FROM invoices
		WHERE public_id = $1
	`, publicID.String())

	rec, rowID, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}

	items, err := s.loadItems(ctx, rowID)
	if err != nil {
		return nil, err
	}
	rec.Items = items
	return rec, nil
}

func (s *Postgres) NumberExists(ctx context.Context, owner id.OwnerID, number string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM invoices WHERE owner_id = $1 AND number = $2)
	`, int64(owner), number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return exists, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, owner id.OwnerID) ([]*invoice.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, public_id, owner_id, client_id, number,
		       issue_date, due_date, currency,
		       subtotal, tax, total,
		       created_at, digest, status, revoked_at, revocation_reason
		FROM invoices
		WHERE owner_id = $1
		ORDER BY created_at, number
	`, int64(owner))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*invoice.Record
	for rows.Next() {
		rec, rowID, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		items, err := s.loadItems(ctx, rowID)
		if err != nil {
			return nil, err
		}
		rec.Items = items
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

// Revoke writes status and revocation info in one statement guarded by the
// current-status predicate, so two concurrent revokes serialize at the row
// and exactly one succeeds.
func (s *Postgres) Revoke(ctx context.Context, publicID id.PublicID, info invoice.RevocationInfo) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = $2, revoked_at = $3, revocation_reason = $4
		WHERE public_id = $1 AND status = $5
	`, publicID.String(), string(invoice.StatusRevoked), info.RevokedAt, info.Reason, string(invoice.StatusActive))
	if err != nil {
		return fmt.Errorf("revoke invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke invoice: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Nothing updated: distinguish unknown from already revoked.
	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM invoices WHERE public_id = $1`, publicID.String()).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("revoke invoice status check: %w", err)
	}
	return sentinel.ErrInvalidState
}

func (s *Postgres) loadItems(ctx context.Context, rowID int64) ([]invoice.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`, rowID)
	if err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	defer rows.Close()

	var items []invoice.LineItem
	for rows.Next() {
		var item invoice.LineItem
		if err := rows.Scan(&item.Product, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoice.Record, int64, error) {
	var (
		rec       invoice.Record
		rowID     int64
		publicID  string
		ownerID   int64
		clientID  int64
		status    string
		revokedAt sql.NullTime
		reason    sql.NullString
	)
	err := row.Scan(
		&rowID, &publicID, &ownerID, &clientID, &rec.Number,
		&rec.IssueDate, &rec.DueDate, &rec.Currency,
		&rec.Subtotal, &rec.Tax, &rec.Total,
		&rec.CreatedAt, &rec.Digest, &status, &revokedAt, &reason,
	)
	if err != nil {
		return nil, 0, err
	}

	parsed, err := id.ParsePublicID(publicID)
	if err != nil {
		return nil, 0, fmt.Errorf("stored public id is malformed: %w", err)
	}
	rec.PublicID = parsed
	rec.OwnerID = id.OwnerID(ownerID)
	rec.ClientID = id.ClientID(clientID)
	rec.Status = invoice.Status(status)
	if rec.Status == invoice.StatusRevoked && revokedAt.Valid {
		rec.Revoked = &invoice.RevocationInfo{
			RevokedAt: revokedAt.Time,
			Reason:    reason.String,
		}
	}
	return &rec, rowID, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
