package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/infrastructure/config"
)

func testSnapshot() *commission.Snapshot {
	return &commission.Snapshot{
		Settings: commission.Settings{
			Purchase: commission.PercentagePolicy(decimal.NewFromInt(2)),
			Sale:     commission.FixedPolicy(decimal.NewFromInt(25000)),
		},
		Source: commission.SourceGlobal,
	}
}

func withClock(now func() time.Time) InMemorySettingsCacheOption {
	return func(c *InMemorySettingsCache) {
		c.now = now
	}
}

func TestInMemorySettingsCache_GetSet(t *testing.T) {
	c := NewInMemorySettingsCache()
	defer c.Close()
	ctx := context.Background()
	bargainID := uuid.New()

	got, err := c.Get(ctx, bargainID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, bargainID, testSnapshot()))
	got, err = c.Get(ctx, bargainID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, commission.SourceGlobal, got.Source)
	assert.True(t, got.Settings.Sale.Value.Equal(decimal.NewFromInt(25000)))

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemorySettingsCache_SetNilIsNoop(t *testing.T) {
	c := NewInMemorySettingsCache()
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), uuid.New(), nil))
	assert.Equal(t, 0, c.Len())
}

func TestInMemorySettingsCache_ReturnsCopy(t *testing.T) {
	c := NewInMemorySettingsCache()
	defer c.Close()
	ctx := context.Background()
	bargainID := uuid.New()

	snapshot := testSnapshot()
	require.NoError(t, c.Set(ctx, bargainID, snapshot))
	snapshot.Source = commission.SourceOverride

	got, err := c.Get(ctx, bargainID)
	require.NoError(t, err)
	assert.Equal(t, commission.SourceGlobal, got.Source)
}

func TestInMemorySettingsCache_Invalidate(t *testing.T) {
	c := NewInMemorySettingsCache()
	defer c.Close()
	ctx := context.Background()
	bargainID := uuid.New()
	other := uuid.New()

	require.NoError(t, c.Set(ctx, bargainID, testSnapshot()))
	require.NoError(t, c.Set(ctx, other, testSnapshot()))
	require.NoError(t, c.Invalidate(ctx, bargainID))

	got, err := c.Get(ctx, bargainID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, other)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestInMemorySettingsCache_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewInMemorySettingsCache(WithInMemoryTTL(time.Minute), withClock(func() time.Time { return now }))
	defer c.Close()
	ctx := context.Background()
	bargainID := uuid.New()

	require.NoError(t, c.Set(ctx, bargainID, testSnapshot()))

	now = now.Add(59 * time.Second)
	got, err := c.Get(ctx, bargainID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(time.Second)
	got, err = c.Get(ctx, bargainID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Len())
}

func TestInMemorySettingsCache_RemoveExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewInMemorySettingsCache(WithInMemoryTTL(time.Minute), withClock(func() time.Time { return now }))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, uuid.New(), testSnapshot()))
	now = now.Add(30 * time.Second)
	require.NoError(t, c.Set(ctx, uuid.New(), testSnapshot()))

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, c.removeExpired())
	assert.Equal(t, 1, c.Len())
}

func TestInMemorySettingsCache_CloseTwice(t *testing.T) {
	c := NewInMemorySettingsCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestNewSettingsCache_FallsBackToInMemory(t *testing.T) {
	t.Run("redis disabled", func(t *testing.T) {
		c := NewSettingsCache(context.Background(), config.RedisConfig{Enabled: false}, nil)
		defer c.Close()
		assert.IsType(t, &InMemorySettingsCache{}, c)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		c := NewSettingsCache(context.Background(), config.RedisConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    1,
		}, nil)
		defer c.Close()
		assert.IsType(t, &InMemorySettingsCache{}, c)
	})
}
