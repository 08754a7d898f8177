package cache

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/infrastructure/config"
)

// SettingsCache is a commission.SettingsCache that holds resources
type SettingsCache interface {
	commission.SettingsCache
	io.Closer
}

// NewSettingsCache returns a Redis cache when Redis is enabled and reachable,
// and an in-memory cache otherwise
func NewSettingsCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) SettingsCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled {
		c, err := NewRedisSettingsCache(ctx, &redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}, WithRedisTTL(cfg.PolicyCacheTTL), WithRedisLogger(logger))
		if err == nil {
			logger.Info("using Redis commission settings cache", zap.String("addr", cfg.Addr()))
			return c
		}
		logger.Warn("Redis unavailable, falling back to in-memory commission settings cache. "+
			"Settings changes on other instances are seen only after the TTL expires.",
			zap.Error(err))
	}

	return NewInMemorySettingsCache(WithInMemoryTTL(cfg.PolicyCacheTTL), WithInMemoryLogger(logger))
}
