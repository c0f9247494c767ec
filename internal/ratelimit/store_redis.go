package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the fixed window with a counter key that
// expires when the window ends. INCR is atomic so concurrent consumers
// never overshoot by more than they observe.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) TryConsume(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:%s:%s", userID, action)

	count, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		if err := s.Client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}
