package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

// RedisEventDedup remembers processor webhook event ids so redelivered
// events short-circuit before business logic. The TTL only needs to cover
// the processor's retry horizon; the conditional status update remains the
// correctness guard if an id expires early.
type RedisEventDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisEventDedup(rdb *redis.Client, ttl time.Duration) *RedisEventDedup {
	return &RedisEventDedup{rdb: rdb, ttl: ttl}
}

func (s *RedisEventDedup) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	return s.rdb.SetNX(ctx, "webhook:evt:"+eventID, "1", s.ttl).Result()
}

var _ usecase.EventDedup = (*RedisEventDedup)(nil)
