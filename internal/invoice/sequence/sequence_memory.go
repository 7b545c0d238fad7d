package sequence

import (
	"context"
	"sync"

	id "quoteguard/pkg/domain"
)

// Memory is a process-local sequencer for development and tests. Counters
// reset on restart, so single-process deployments should pair it with the
// duplicate-number check at the store.
type Memory struct {
	mu       sync.Mutex
	counters map[id.OwnerID]uint64
}

func NewMemory() *Memory {
	return &Memory{counters: make(map[id.OwnerID]uint64)}
}

func (s *Memory) Next(_ context.Context, owner id.OwnerID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[owner]++
	return s.counters[owner], nil
}
