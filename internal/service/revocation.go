package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationList stores revoked session ids with a TTL matching the
// token's remaining lifetime.
type RedisRevocationList struct {
	redis *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{redis: client}
}

func revokedKey(id string) string {
	return fmt.Sprintf("session:revoked:%s", id)
}

func (r *RedisRevocationList) Revoke(ctx context.Context, id string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.redis.Set(ctx, revokedKey(id), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.redis.Exists(ctx, revokedKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
