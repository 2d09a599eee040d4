package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tron-address-info/internal/adapter"
	"github.com/tron-address-info/internal/config"
)

// RedisCache wraps the Redis client. It holds short-lived snapshots of raw
// ledger responses so that bursts of lookups for the same address do not all
// hit the TRON node.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxConnections,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Ping checks if Redis is reachable
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// snapshotKey generates the cache key for an address snapshot.
// Format: acct:<address>
func snapshotKey(address string) string {
	return "acct:" + address
}

// GetAccountSnapshot retrieves a cached ledger snapshot for an address.
// A miss is not an error.
func (r *RedisCache) GetAccountSnapshot(ctx context.Context, address string) (*adapter.AccountSnapshot, bool, error) {
	data, err := r.client.Get(ctx, snapshotKey(address)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}

	var snapshot adapter.AccountSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}

	return &snapshot, true, nil
}

// SetAccountSnapshot stores a ledger snapshot with the configured TTL
func (r *RedisCache) SetAccountSnapshot(ctx context.Context, address string, snapshot *adapter.AccountSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return r.client.Set(ctx, snapshotKey(address), data, r.ttl).Err()
}
