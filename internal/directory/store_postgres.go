package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/sentinel"
)

// Postgres resolves owners and clients from the relational tables the
// external account system maintains.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindOwner(ctx context.Context, ownerID id.OwnerID) (Owner, error) {
	var owner Owner
	var rawID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email FROM owners WHERE id = $1
	`, int64(ownerID)).Scan(&rawID, &owner.DisplayName, &owner.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Owner{}, sentinel.ErrNotFound
		}
		return Owner{}, fmt.Errorf("find owner: %w", err)
	}
	owner.ID = id.OwnerID(rawID)
	return owner, nil
}

func (s *Postgres) FindClient(ctx context.Context, clientID id.ClientID) (Client, error) {
	var client Client
	var rawID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email FROM clients WHERE id = $1
	`, int64(clientID)).Scan(&rawID, &client.Name, &client.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, sentinel.ErrNotFound
		}
		return Client{}, fmt.Errorf("find client: %w", err)
	}
	client.ID = id.ClientID(rawID)
	return client, nil
}
