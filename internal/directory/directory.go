// Package directory exposes read-only lookups of owners (issuing parties) and
// clients (billed parties). Account management lives in an external system;
// the engine only resolves ids to existence and display data.
package directory

import (
	"context"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/email"
)

// Owner is the issuing party as the external account system describes it.
type Owner struct {
	ID          id.OwnerID
	DisplayName string
	Email       string
}

// Client is the billed party.
type Client struct {
	ID    id.ClientID
	Name  string
	Email string
}

// ResolveDisplayName fills in a derived display name when the account system
// provided none, so verification responses never show an empty issuer.
func ResolveDisplayName(owner Owner) string {
	if owner.DisplayName != "" {
		return owner.DisplayName
	}
	return email.DeriveDisplayName(owner.Email)
}

// OwnerDirectory resolves owner ids. Implementations return
// sentinel.ErrNotFound for unknown ids.
type OwnerDirectory interface {
	FindOwner(ctx context.Context, ownerID id.OwnerID) (Owner, error)
}

// ClientDirectory resolves client ids. Implementations return
// sentinel.ErrNotFound for unknown ids.
type ClientDirectory interface {
	FindClient(ctx context.Context, clientID id.ClientID) (Client, error)
}
