package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
)

// Status enumerates the lifecycle states of an invoice record. The only legal
// transition is Active -> Revoked; there is no way back and no way out of
// Revoked.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// LineItem is a value type owned by exactly one record. Items carry no
// identity; canonical ordering is (product name, then input position).
type LineItem struct {
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
}

// RevocationInfo is present if and only if the record status is Revoked. Once
// set it is never cleared or overwritten.
type RevocationInfo struct {
	RevokedAt time.Time
	Reason    string
}

// Record is the persisted invoice. Every field except Status and Revocation
// is write-once: no operation may mutate them after the record is created.
// Records are never deleted (audit-trail requirement).
type Record struct {
	PublicID  id.PublicID
	OwnerID   id.OwnerID
	ClientID  id.ClientID
	Number    string
	IssueDate time.Time
	DueDate   time.Time
	Currency  string
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Items     []LineItem
	CreatedAt time.Time
	Digest    string
	Status    Status
	Revoked   *RevocationInfo
}

// IsRevoked reports whether the one-way transition has happened.
func (r *Record) IsRevoked() bool {
	return r.Status == StatusRevoked
}

// Clone returns a deep copy so stores can hand out records without sharing
// the items slice or revocation pointer with callers.
func (r *Record) Clone() *Record {
	cp := *r
	cp.Items = append([]LineItem(nil), r.Items...)
	if r.Revoked != nil {
		rev := *r.Revoked
		cp.Revoked = &rev
	}
	return &cp
}

// Draft is the validated input to invoice creation. A draft that fails
// Validate never reaches canonicalization or the store.
type Draft struct {
	OwnerID  id.OwnerID
	ClientID id.ClientID
	// Number is optional; when empty the orchestrator synthesizes one from
	// the per-owner sequence.
	Number    string
	IssueDate time.Time
	DueDate   time.Time
	Currency  string
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Items     []LineItem
}

// Validate rejects incomplete or malformed drafts at the boundary. Zero line
// items is allowed; negative amounts and non-positive quantities are not.
func (d Draft) Validate() error {
	if d.OwnerID <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "owner id is required")
	}
	if d.ClientID <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "client id is required")
	}
	if d.IssueDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "issue date is required")
	}
	if d.DueDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "due date is required")
	}
	if d.DueDate.Before(d.IssueDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "due date must not precede issue date")
	}
	if err := validateCurrency(d.Currency); err != nil {
		return err
	}
	for _, amount := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", d.Subtotal},
		{"tax", d.Tax},
		{"total", d.Total},
	} {
		if amount.value.IsNegative() {
			return dErrors.New(dErrors.CodeInvalidInput, amount.name+" must not be negative")
		}
	}
	for _, item := range d.Items {
		if strings.TrimSpace(item.Product) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "line item product name is required")
		}
		if item.Quantity <= 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "line item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return dErrors.New(dErrors.CodeInvalidInput, "line item unit price must not be negative")
		}
	}
	return nil
}

func validateCurrency(c string) error {
	if len(c) != 3 {
		return dErrors.New(dErrors.CodeInvalidInput, "currency must be a 3-letter ISO 4217 code")
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return dErrors.New(dErrors.CodeInvalidInput, "currency must be a 3-letter ISO 4217 code")
		}
	}
	return nil
}

// NewRecord builds an Active record from a validated draft. The digest is
// attached by the orchestrator before the record is persisted; a record is
// never visible without it.
func NewRecord(d Draft, number string, publicID id.PublicID, createdAt time.Time) *Record {
	return &Record{
		PublicID:  publicID,
		OwnerID:   d.OwnerID,
		ClientID:  d.ClientID,
		Number:    number,
		IssueDate: d.IssueDate,
		DueDate:   d.DueDate,
		Currency:  d.Currency,
		Subtotal:  d.Subtotal,
		Tax:       d.Tax,
		Total:     d.Total,
		Items:     append([]LineItem(nil), d.Items...),
		CreatedAt: createdAt,
		Status:    StatusActive,
	}
}
