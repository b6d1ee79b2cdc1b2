package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps failure counts in Redis so that every process sharing
// the server sees the same lockouts.
type RedisLimiter struct {
	client *redis.Client
	policy Policy
	prefix string
}

// NewRedisLimiter creates a limiter over client.
func NewRedisLimiter(client *redis.Client, policy Policy) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		policy: policy.normalized(),
		prefix: "stockroom:login",
	}
}

func (l *RedisLimiter) failuresKey(username string) string {
	return fmt.Sprintf("%s:failures:%s", l.prefix, username)
}

func (l *RedisLimiter) lockKey(username string) string {
	return fmt.Sprintf("%s:locked:%s", l.prefix, username)
}

// Locked returns how long username stays locked, or zero.
func (l *RedisLimiter) Locked(ctx context.Context, username string) (time.Duration, error) {
	ttl, err := l.client.PTTL(ctx, l.lockKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read lockout: %w", err)
	}
	// -2 means no key, -1 a key without expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Failure counts a failed attempt and reports whether username is now locked.
func (l *RedisLimiter) Failure(ctx context.Context, username string) (bool, error) {
	key := l.failuresKey(username)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.policy.Lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count login failure: %w", err)
	}

	if incr.Val() < int64(l.policy.MaxAttempts) {
		return false, nil
	}

	pipe = l.client.TxPipeline()
	pipe.Set(ctx, l.lockKey(username), 1, l.policy.Lockout)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to lock username: %w", err)
	}
	return true, nil
}

// Reset forgets the failures of username.
func (l *RedisLimiter) Reset(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, l.failuresKey(username), l.lockKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}

// Ping checks the connection to Redis.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// NewRedisClient parses a redis:// URL and connects.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
