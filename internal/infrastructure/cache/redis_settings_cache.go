package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autobargain/backend/internal/domain/commission"
)

const defaultKeyPrefix = "bargain:commission_settings:"

// RedisSettingsCache implements commission.SettingsCache on Redis, so every
// instance sees the same invalidations
type RedisSettingsCache struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisSettingsCacheOption is a functional option for configuring the cache
type RedisSettingsCacheOption func(*RedisSettingsCache)

// WithRedisTTL sets the expiry of stored entries
func WithRedisTTL(ttl time.Duration) RedisSettingsCacheOption {
	return func(c *RedisSettingsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the prefix of every key the cache writes
func WithKeyPrefix(prefix string) RedisSettingsCacheOption {
	return func(c *RedisSettingsCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisSettingsCacheOption {
	return func(c *RedisSettingsCache) {
		c.logger = logger
	}
}

// NewRedisSettingsCache opens a client and verifies the connection
func NewRedisSettingsCache(ctx context.Context, opts *redis.Options, cacheOpts ...RedisSettingsCacheOption) (*RedisSettingsCache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisSettingsCacheWithClient(client, cacheOpts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisSettingsCacheWithClient wraps an existing client; the caller keeps ownership
func NewRedisSettingsCacheWithClient(client *redis.Client, opts ...RedisSettingsCacheOption) *RedisSettingsCache {
	c := &RedisSettingsCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultSettingsTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisSettingsCache) key(bargainID uuid.UUID) string {
	return c.keyPrefix + bargainID.String()
}

// Get returns the cached snapshot of a bargain, or nil on a miss
func (c *RedisSettingsCache) Get(ctx context.Context, bargainID uuid.UUID) (*commission.Snapshot, error) {
	key := c.key(bargainID)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("commission settings cache miss", zap.String("bargain_id", bargainID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commission settings from cache: %w", err)
	}

	var snapshot commission.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("dropping corrupted commission settings entry",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores the snapshot with the configured TTL
func (c *RedisSettingsCache) Set(ctx context.Context, bargainID uuid.UUID, snapshot *commission.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal commission settings: %w", err)
	}
	if err := c.client.Set(ctx, c.key(bargainID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache commission settings: %w", err)
	}
	return nil
}

// Invalidate deletes the bargain's entry
func (c *RedisSettingsCache) Invalidate(ctx context.Context, bargainID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(bargainID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate commission settings: %w", err)
	}
	return nil
}

// Close closes the client when the cache created it
func (c *RedisSettingsCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}

var _ commission.SettingsCache = (*RedisSettingsCache)(nil)
