package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/sentinel"
)

// Redis key prefix for per-owner counters.
const ownerSeqKeyPrefix = "invseq:owner:"

// Redis is the production sequencer for multi-instance deployments: INCR is
// atomic, so concurrent creators for the same owner never observe the same
// value.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Next(ctx context.Context, owner id.OwnerID) (uint64, error) {
	n, err := s.client.Incr(ctx, ownerSeqKeyPrefix+owner.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: next invoice sequence: %v", sentinel.ErrUnavailable, err)
	}
	return uint64(n), nil
}
