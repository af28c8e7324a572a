package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/redis/go-redis/v9"
)

// RedisSyncLocker implements SyncLocker using Redis
// This is suitable for distributed deployments where multiple instances
// must not sync the same record concurrently
type RedisSyncLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSyncLocker creates a new Redis-based sync locker
func NewRedisSyncLocker(cfg RedisConfig, ttl time.Duration) (*RedisSyncLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSyncLockerWithClient(client, "", ttl), nil
}

// NewRedisSyncLockerWithClient creates a locker with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisSyncLockerWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSyncLocker {
	if keyPrefix == "" {
		keyPrefix = "sync:lock:"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSyncLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Acquire takes the lock for the pair using SET NX with a TTL so crashed
// holders release automatically. It never blocks.
func (l *RedisSyncLocker) Acquire(ctx context.Context, kind salla.EntityKind, localKey string) (bool, error) {
	key := l.keyPrefix + lockKey(kind, localKey)

	acquired, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}

	return acquired, nil
}

// Release frees the lock for the pair
func (l *RedisSyncLocker) Release(ctx context.Context, kind salla.EntityKind, localKey string) error {
	key := l.keyPrefix + lockKey(kind, localKey)

	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisSyncLocker) Close() error {
	return l.client.Close()
}

// Ensure RedisSyncLocker implements SyncLocker
var _ salla.SyncLocker = (*RedisSyncLocker)(nil)
