package store

import (
	"context"
	"sort"
	"sync"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/sentinel"
)

// Memory keeps records in process memory. It backs local development and unit
// tests; the mutex gives it the same atomicity guarantees the PostgreSQL
// implementation gets from its transactions and row predicates.
type Memory struct {
	mu       sync.RWMutex
	records  map[id.PublicID]*invoice.Record
	byNumber map[id.OwnerID]map[string]id.PublicID
}

func NewMemory() *Memory {
	return &Memory{
		records:  make(map[id.PublicID]*invoice.Record),
		byNumber: make(map[id.OwnerID]map[string]id.PublicID),
	}
}

func (s *Memory) Create(_ context.Context, rec *invoice.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.PublicID]; exists {
		return sentinel.ErrConflict
	}
	numbers := s.byNumber[rec.OwnerID]
	if numbers == nil {
		numbers = make(map[string]id.PublicID)
		s.byNumber[rec.OwnerID] = numbers
	}
	if _, exists := numbers[rec.Number]; exists {
		return sentinel.ErrConflict
	}

	s.records[rec.PublicID] = rec.Clone()
	numbers[rec.Number] = rec.PublicID
	return nil
}

func (s *Memory) FindByPublicID(_ context.Context, publicID id.PublicID) (*invoice.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[publicID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Memory) NumberExists(_ context.Context, owner id.OwnerID, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.byNumber[owner][number]
	return exists, nil
}

func (s *Memory) ListByOwner(_ context.Context, owner id.OwnerID) ([]*invoice.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*invoice.Record
	for _, rec := range s.records {
		if rec.OwnerID == owner {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Revoke performs the check-and-set transition Active -> Revoked. Status and
// RevocationInfo change together under the lock; a concurrent second caller
// observes ErrInvalidState.
func (s *Memory) Revoke(_ context.Context, publicID id.PublicID, info invoice.RevocationInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[publicID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.Status != invoice.StatusActive {
		return sentinel.ErrInvalidState
	}
	rec.Status = invoice.StatusRevoked
	rec.Revoked = &invoice.RevocationInfo{RevokedAt: info.RevokedAt, Reason: info.Reason}
	return nil
}

// Tamper overwrites a stored record in place, bypassing every invariant.
// It exists only so tests can simulate storage-level modification of
// immutable fields; production wiring never calls it.
func (s *Memory) Tamper(publicID id.PublicID, mutate func(*invoice.Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[publicID]
	if !ok {
		return false
	}
	mutate(rec)
	return true
}
