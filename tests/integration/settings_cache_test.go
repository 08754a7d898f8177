package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/infrastructure/cache"
)

func startRedis(t *testing.T) *redis.Options {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return &redis.Options{Addr: endpoint}
}

func TestRedisSettingsCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	opts := startRedis(t)

	newCache := func() *cache.RedisSettingsCache {
		c, err := cache.NewRedisSettingsCache(ctx, opts,
			cache.WithRedisTTL(time.Minute),
			cache.WithRedisLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
	writer := newCache()
	reader := newCache()

	bargainID := uuid.New()
	snapshot := &commission.Snapshot{
		Settings: commission.Settings{
			Purchase: commission.PercentagePolicy(dec("2")),
			Sale:     commission.FixedPolicy(dec("25000")),
		},
		Source: commission.SourceGlobal,
	}

	t.Run("miss before anything is stored", func(t *testing.T) {
		got, err := reader.Get(ctx, bargainID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("another instance reads what one stored", func(t *testing.T) {
		require.NoError(t, writer.Set(ctx, bargainID, snapshot))

		got, err := reader.Get(ctx, bargainID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, commission.SourceGlobal, got.Source)
		assert.Equal(t, snapshot.Settings.Sale.Kind, got.Settings.Sale.Kind)
		assert.True(t, dec("25000").Equal(got.Settings.Sale.Value))
		assert.True(t, dec("2").Equal(got.Settings.Purchase.Value))
	})

	t.Run("invalidation is seen by every instance", func(t *testing.T) {
		require.NoError(t, writer.Invalidate(ctx, bargainID))

		got, err := reader.Get(ctx, bargainID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("a corrupted entry reads as a miss and is dropped", func(t *testing.T) {
		client := redis.NewClient(opts)
		defer client.Close()
		key := "bargain:commission_settings:" + bargainID.String()
		require.NoError(t, client.Set(ctx, key, "{not json", time.Minute).Err())

		got, err := reader.Get(ctx, bargainID)
		require.NoError(t, err)
		assert.Nil(t, got)

		exists, err := client.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})
}
