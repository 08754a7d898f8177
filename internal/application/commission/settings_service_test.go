package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

// MockSettingsRepository is a mock implementation of commission.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) FindGlobal(ctx context.Context, bargainID uuid.UUID) (*commission.GlobalSettings, error) {
	args := m.Called(ctx, bargainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.GlobalSettings), args.Error(1)
}

func (m *MockSettingsRepository) SaveGlobal(ctx context.Context, settings *commission.GlobalSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) FindOverride(ctx context.Context, bargainID uuid.UUID) (*commission.Override, error) {
	args := m.Called(ctx, bargainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.Override), args.Error(1)
}

func (m *MockSettingsRepository) SaveOverride(ctx context.Context, override *commission.Override) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

// MockSettingsCache is a mock implementation of commission.SettingsCache
type MockSettingsCache struct {
	mock.Mock
}

func (m *MockSettingsCache) Get(ctx context.Context, bargainID uuid.UUID) (*commission.Snapshot, error) {
	args := m.Called(ctx, bargainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.Snapshot), args.Error(1)
}

func (m *MockSettingsCache) Set(ctx context.Context, bargainID uuid.UUID, snapshot *commission.Snapshot) error {
	args := m.Called(ctx, bargainID, snapshot)
	return args.Error(0)
}

func (m *MockSettingsCache) Invalidate(ctx context.Context, bargainID uuid.UUID) error {
	args := m.Called(ctx, bargainID)
	return args.Error(0)
}

func systemSettings() commission.Settings {
	return commission.Settings{
		Purchase: commission.PercentagePolicy(decimal.NewFromInt(2)),
		Sale:     commission.PercentagePolicy(decimal.NewFromInt(5)),
	}
}

func newTestService(repo *MockSettingsRepository) *SettingsService {
	svc := NewSettingsService(repo, systemSettings())
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(appshared.NewFixedClock(func() time.Time { return fixed }, time.UTC))
	return svc
}

func validRequest() SettingsRequest {
	return SettingsRequest{
		Purchase: PolicyInput{Kind: "fixed", Value: "50000"},
		Sale:     PolicyInput{Kind: "percentage", Value: "3.5"},
	}
}

func TestParseSettings(t *testing.T) {
	settings, err := ParseSettings("percentage", "2", "fixed", "25000")
	require.NoError(t, err)
	assert.Equal(t, commission.KindPercentage, settings.Purchase.Kind)
	assert.True(t, settings.Sale.Value.Equal(decimal.NewFromInt(25000)))

	_, err = ParseSettings("percentage", "101", "fixed", "1")
	assert.ErrorIs(t, err, shared.ErrInvalidPolicy)

	_, err = ParseSettings("percentage", "1", "tiered", "1")
	assert.ErrorIs(t, err, shared.ErrInvalidPolicy)
}

func TestSettingsService_Resolve(t *testing.T) {
	bargainID := uuid.New()

	t.Run("falls back to system settings and caches them", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		cache.On("Get", mock.Anything, bargainID).Return(nil, nil)
		repo.On("FindOverride", mock.Anything, bargainID).Return(nil, nil)
		repo.On("FindGlobal", mock.Anything, bargainID).Return(nil, nil)
		cache.On("Set", mock.Anything, bargainID, mock.MatchedBy(func(s *commission.Snapshot) bool {
			return s.Source == commission.SourceSystem
		})).Return(nil)

		resolved, err := svc.Resolve(context.Background(), bargainID, trade.SubjectSale)
		require.NoError(t, err)
		assert.Equal(t, commission.SourceSystem, resolved.Source)
		assert.True(t, resolved.Policy.Value.Equal(decimal.NewFromInt(5)))

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		cached := &commission.Snapshot{
			Settings: commission.Settings{
				Purchase: commission.FixedPolicy(decimal.NewFromInt(1000)),
				Sale:     commission.FixedPolicy(decimal.NewFromInt(2000)),
			},
			Source: commission.SourceOverride,
		}
		cache.On("Get", mock.Anything, bargainID).Return(cached, nil)

		resolved, err := svc.Resolve(context.Background(), bargainID, trade.SubjectPurchase)
		require.NoError(t, err)
		assert.Equal(t, commission.SourceOverride, resolved.Source)
		assert.True(t, resolved.Policy.Value.Equal(decimal.NewFromInt(1000)))
		repo.AssertNotCalled(t, "FindOverride", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "FindGlobal", mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls through to the repository", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		global, err := commission.NewGlobalSettings(bargainID, commission.Settings{
			Purchase: commission.PercentagePolicy(decimal.NewFromInt(1)),
			Sale:     commission.PercentagePolicy(decimal.NewFromInt(4)),
		})
		require.NoError(t, err)

		cache.On("Get", mock.Anything, bargainID).Return(nil, errors.New("connection refused"))
		repo.On("FindOverride", mock.Anything, bargainID).Return(nil, nil)
		repo.On("FindGlobal", mock.Anything, bargainID).Return(global, nil)
		cache.On("Set", mock.Anything, bargainID, mock.Anything).Return(errors.New("connection refused"))

		resolved, err := svc.Resolve(context.Background(), bargainID, trade.SubjectSale)
		require.NoError(t, err)
		assert.Equal(t, commission.SourceGlobal, resolved.Source)
		assert.True(t, resolved.Policy.Value.Equal(decimal.NewFromInt(4)))
	})

	t.Run("active override wins without a cache", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)

		override, err := commission.NewOverride(bargainID, commission.Settings{
			Purchase: commission.FixedPolicy(decimal.NewFromInt(10000)),
			Sale:     commission.FixedPolicy(decimal.NewFromInt(20000)),
		}, "festival rate")
		require.NoError(t, err)

		repo.On("FindOverride", mock.Anything, bargainID).Return(override, nil)
		repo.On("FindGlobal", mock.Anything, bargainID).Return(nil, nil)

		resolved, err := svc.Resolve(context.Background(), bargainID, trade.SubjectSale)
		require.NoError(t, err)
		assert.Equal(t, commission.SourceOverride, resolved.Source)
		assert.True(t, resolved.Policy.Value.Equal(decimal.NewFromInt(20000)))
	})

	t.Run("repository error is returned", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)
		repo.On("FindOverride", mock.Anything, bargainID).Return(nil, errors.New("db down"))

		_, err := svc.Resolve(context.Background(), bargainID, trade.SubjectSale)
		assert.EqualError(t, err, "db down")
	})
}

func TestSettingsService_SetGlobalPolicy(t *testing.T) {
	bargainID := uuid.New()

	t.Run("creates settings and invalidates the cache", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		repo.On("FindGlobal", mock.Anything, bargainID).Return(nil, nil)
		repo.On("SaveGlobal", mock.Anything, mock.MatchedBy(func(g *commission.GlobalSettings) bool {
			return g.BargainID == bargainID && g.Purchase.Kind == commission.KindFixed
		})).Return(nil)
		cache.On("Invalidate", mock.Anything, bargainID).Return(nil)

		resp, err := svc.SetGlobalPolicy(context.Background(), bargainID, validRequest())
		require.NoError(t, err)
		assert.Equal(t, commission.SourceGlobal, resp.Source)
		assert.True(t, resp.Sale.Value.Equal(decimal.RequireFromString("3.5")))

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("updates existing settings", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)

		existing, err := commission.NewGlobalSettings(bargainID, systemSettings())
		require.NoError(t, err)
		version := existing.GetVersion()

		repo.On("FindGlobal", mock.Anything, bargainID).Return(existing, nil)
		repo.On("SaveGlobal", mock.Anything, existing).Return(nil)

		_, err = svc.SetGlobalPolicy(context.Background(), bargainID, validRequest())
		require.NoError(t, err)
		assert.Equal(t, version+1, existing.GetVersion())
		assert.Equal(t, commission.KindFixed, existing.Purchase.Kind)
	})

	t.Run("rejects an invalid policy without saving", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)

		req := validRequest()
		req.Sale.Value = "-1"
		_, err := svc.SetGlobalPolicy(context.Background(), bargainID, req)
		assert.ErrorIs(t, err, shared.ErrInvalidPolicy)
		repo.AssertNotCalled(t, "SaveGlobal", mock.Anything, mock.Anything)
	})

	t.Run("rejects a missing value", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)

		req := validRequest()
		req.Purchase.Value = ""
		_, err := svc.SetGlobalPolicy(context.Background(), bargainID, req)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Contains(t, err.Error(), "purchase.value")
	})
}

func TestSettingsService_Override(t *testing.T) {
	bargainID := uuid.New()

	t.Run("creates an active override", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		repo.On("FindOverride", mock.Anything, bargainID).Return(nil, nil)
		repo.On("SaveOverride", mock.Anything, mock.AnythingOfType("*commission.Override")).Return(nil)
		cache.On("Invalidate", mock.Anything, bargainID).Return(nil)

		resp, err := svc.SetOverride(context.Background(), bargainID, OverrideRequest{
			Purchase: PolicyInput{Kind: "percentage", Value: "1"},
			Sale:     PolicyInput{Kind: "percentage", Value: "2"},
			Reason:   "launch discount",
		})
		require.NoError(t, err)
		assert.True(t, resp.Active)
		assert.Equal(t, "launch discount", resp.Reason)
		cache.AssertExpectations(t)
	})

	t.Run("deactivates an active override", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		cache := new(MockSettingsCache)
		svc := newTestService(repo)
		svc.SetCache(cache)

		override, err := commission.NewOverride(bargainID, systemSettings(), "")
		require.NoError(t, err)
		repo.On("FindOverride", mock.Anything, bargainID).Return(override, nil)
		repo.On("SaveOverride", mock.Anything, override).Return(nil)
		cache.On("Invalidate", mock.Anything, bargainID).Return(errors.New("redis unavailable"))

		resp, err := svc.DeactivateOverride(context.Background(), bargainID)
		require.NoError(t, err)
		assert.False(t, resp.Active)
		assert.False(t, override.Active)
	})

	t.Run("deactivating an inactive override does not save", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)

		override, err := commission.NewOverride(bargainID, systemSettings(), "")
		require.NoError(t, err)
		override.Deactivate(time.Now())
		repo.On("FindOverride", mock.Anything, bargainID).Return(override, nil)

		resp, err := svc.DeactivateOverride(context.Background(), bargainID)
		require.NoError(t, err)
		assert.False(t, resp.Active)
		repo.AssertNotCalled(t, "SaveOverride", mock.Anything, mock.Anything)
	})

	t.Run("deactivating without an override is not found", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := newTestService(repo)
		repo.On("FindOverride", mock.Anything, bargainID).Return(nil, nil)

		_, err := svc.DeactivateOverride(context.Background(), bargainID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
