// Package verification implements the public trust check: given a public
// invoice identifier, classify the record as verified, revoked, modified, or
// not found. Classification never errors; only infrastructure failures do.
package verification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the verdict of one verification check.
type Outcome string

const (
	// OutcomeVerified means the record exists, is active, and its stored
	// digest matches a fresh recomputation.
	OutcomeVerified Outcome = "verified"
	// OutcomeRevoked means the issuer withdrew the invoice. Revocation takes
	// precedence over the digest check; a revoked record is reported as
	// revoked even if its content was also tampered with.
	OutcomeRevoked Outcome = "revoked"
	// OutcomeModified means the stored digest no longer matches the record
	// content. The response deliberately carries no invoice details beyond
	// the identifying number.
	OutcomeModified Outcome = "modified"
	// OutcomeNotFound covers unknown and malformed public identifiers alike,
	// so probing cannot distinguish the two.
	OutcomeNotFound Outcome = "not_found"
)

// Result is what a verifier (typically a third party holding a QR link) gets
// back. Fields beyond Outcome and CheckedAt are populated per outcome:
// Verified discloses the summary, Revoked adds the revocation info, Modified
// only names the issuer and number, NotFound carries nothing.
type Result struct {
	Outcome   Outcome
	CheckedAt time.Time

	OwnerName     string
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Total         decimal.Decimal

	RevokedAt *time.Time
	Reason    string
}
