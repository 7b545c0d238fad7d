// Package sequence issues per-owner monotonically increasing counters for
// invoice number synthesis. The counter is an injected abstraction so number
// generation stays deterministic and testable instead of deriving from the
// wall clock.
package sequence

import (
	"context"

	id "quoteguard/pkg/domain"
)

// Sequencer returns the next counter value for an owner. Values start at 1
// and never repeat for the same owner.
type Sequencer interface {
	Next(ctx context.Context, owner id.OwnerID) (uint64, error)
}
