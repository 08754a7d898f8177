package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autobargain/backend/internal/domain/commission"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultSettingsTTL     = 10 * time.Minute
)

// InMemorySettingsCache implements commission.SettingsCache inside the process.
// Entries are not shared between instances, so invalidation on one instance
// leaves the others stale until their TTL expires.
type InMemorySettingsCache struct {
	entries sync.Map // map[uuid.UUID]*cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	snapshot  commission.Snapshot
	expiresAt time.Time
}

// InMemorySettingsCacheOption is a functional option for configuring the cache
type InMemorySettingsCacheOption func(*InMemorySettingsCache)

// WithInMemoryTTL sets how long an entry stays valid
func WithInMemoryTTL(ttl time.Duration) InMemorySettingsCacheOption {
	return func(c *InMemorySettingsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemorySettingsCacheOption {
	return func(c *InMemorySettingsCache) {
		c.logger = logger
	}
}

// NewInMemorySettingsCache creates the cache and starts its cleanup loop.
// Call Close to stop the loop.
func NewInMemorySettingsCache(opts ...InMemorySettingsCacheOption) *InMemorySettingsCache {
	c := &InMemorySettingsCache{
		ttl:    defaultSettingsTTL,
		logger: zap.NewNop(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns the cached snapshot of a bargain, or nil on a miss
func (c *InMemorySettingsCache) Get(ctx context.Context, bargainID uuid.UUID) (*commission.Snapshot, error) {
	if value, ok := c.entries.Load(bargainID); ok {
		entry := value.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			atomic.AddInt64(&c.hits, 1)
			snapshot := entry.snapshot
			return &snapshot, nil
		}
		c.entries.Delete(bargainID)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("commission settings cache miss", zap.String("bargain_id", bargainID.String()))
	return nil, nil
}

// Set stores a copy of the snapshot
func (c *InMemorySettingsCache) Set(ctx context.Context, bargainID uuid.UUID, snapshot *commission.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	c.entries.Store(bargainID, &cacheEntry{
		snapshot:  *snapshot,
		expiresAt: c.now().Add(c.ttl),
	})
	return nil
}

// Invalidate drops the bargain's entry
func (c *InMemorySettingsCache) Invalidate(ctx context.Context, bargainID uuid.UUID) error {
	c.entries.Delete(bargainID)
	c.logger.Debug("commission settings cache invalidated", zap.String("bargain_id", bargainID.String()))
	return nil
}

// Close stops the cleanup loop
func (c *InMemorySettingsCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counters
func (c *InMemorySettingsCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Len returns the number of stored entries, expired ones included
func (c *InMemorySettingsCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemorySettingsCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemorySettingsCache) removeExpired() int {
	now := c.now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if !now.Before(value.(*cacheEntry).expiresAt) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("removed expired commission settings entries", zap.Int("removed", removed))
	}
	return removed
}

var _ commission.SettingsCache = (*InMemorySettingsCache)(nil)
