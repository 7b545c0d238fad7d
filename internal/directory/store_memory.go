package directory

import (
	"context"
	"sync"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/sentinel"
)

// Memory holds owners and clients in process memory for development and
// tests.
type Memory struct {
	mu      sync.RWMutex
	owners  map[id.OwnerID]Owner
	clients map[id.ClientID]Client
}

func NewMemory() *Memory {
	return &Memory{
		owners:  make(map[id.OwnerID]Owner),
		clients: make(map[id.ClientID]Client),
	}
}

// PutOwner registers an owner. Test and seed helper.
func (s *Memory) PutOwner(owner Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner.ID] = owner
}

// PutClient registers a client. Test and seed helper.
func (s *Memory) PutClient(client Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = client
}

func (s *Memory) FindOwner(_ context.Context, ownerID id.OwnerID) (Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if owner, ok := s.owners[ownerID]; ok {
		return owner, nil
	}
	return Owner{}, sentinel.ErrNotFound
}

func (s *Memory) FindClient(_ context.Context, clientID id.ClientID) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if client, ok := s.clients[clientID]; ok {
		return client, nil
	}
	return Client{}, sentinel.ErrNotFound
}
