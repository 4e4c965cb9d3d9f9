package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "taskdesk:auth:revoked:"

// Revocation remembers token ids that were signed out before they expired.
type Revocation interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocation keeps revoked token ids as expiring redis keys, so every
// instance behind a load balancer rejects them.
type RedisRevocation struct {
	client *redis.Client
}

func NewRedisRevocation(client *redis.Client) *RedisRevocation {
	return &RedisRevocation{client: client}
}

func (r *RedisRevocation) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (r *RedisRevocation) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
