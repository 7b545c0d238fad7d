package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "quoteguard/pkg/domain-errors"
)

// PublicID is the externally shared identifier of one invoice. It is the only
// token a third party needs to trigger verification, and it is distinct from
// the internal storage key.
//
// Usage: construct via NewPublicID at creation time, or ParsePublicID at trust
// boundaries; direct casting bypasses validation.
type PublicID uuid.UUID

// NewPublicID returns a fresh random (v4) public identifier. Uniqueness is
// additionally enforced by the store's unique index, never by this call alone.
func NewPublicID() PublicID {
	return PublicID(uuid.New())
}

// ParsePublicID constructs a PublicID from external input. It rejects empty,
// malformed, and nil UUIDs.
func ParsePublicID(s string) (PublicID, error) {
	if s == "" {
		return PublicID{}, dErrors.New(dErrors.CodeInvalidInput, "public identifier must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return PublicID{}, dErrors.New(dErrors.CodeInvalidInput, "public identifier must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return PublicID{}, dErrors.New(dErrors.CodeInvalidInput, "public identifier must not be the nil UUID")
	}
	return PublicID(parsed), nil
}

func (p PublicID) String() string {
	return uuid.UUID(p).String()
}

func (p PublicID) IsNil() bool {
	return uuid.UUID(p) == uuid.Nil
}

// OwnerID identifies the issuing party of an invoice. Owners are managed by an
// external account system; the engine only references them by id.
type OwnerID int64

// ParseOwnerID constructs an OwnerID from external input (path params, JWT
// subjects). Identifiers are positive integers.
func ParseOwnerID(s string) (OwnerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "owner identifier must be a positive integer")
	}
	return OwnerID(n), nil
}

func (o OwnerID) String() string {
	return strconv.FormatInt(int64(o), 10)
}

// ClientID identifies the billed party. Like owners, clients live in an
// external system and are referenced by id only.
type ClientID int64

func (c ClientID) String() string {
	return strconv.FormatInt(int64(c), 10)
}
