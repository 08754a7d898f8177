package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

func recordCommission(t *testing.T, bargainID uuid.UUID, subject trade.Subject, amount int64, policy commission.Policy) *commission.Commission {
	t.Helper()
	result, err := commission.Compute(decimal.NewFromInt(amount), policy)
	require.NoError(t, err)
	c, err := commission.NewCommission(bargainID, subject, result, date(2024, 1, 15))
	require.NoError(t, err)
	return c
}

func TestGormCommissionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()
	bargainID := uuid.New()

	sale := trade.SaleSubject(uuid.New())
	purchase := trade.PurchaseSubject(uuid.New())
	require.NoError(t, repo.Save(ctx, recordCommission(t, bargainID, sale, 2500000, commission.PercentagePolicy(decimal.NewFromInt(5)))))
	require.NoError(t, repo.Save(ctx, recordCommission(t, bargainID, purchase, 2000000, commission.FixedPolicy(decimal.NewFromInt(50000)))))
	require.NoError(t, repo.Save(ctx, recordCommission(t, uuid.New(), trade.SaleSubject(uuid.New()), 100, commission.FixedPolicy(decimal.NewFromInt(10)))))

	t.Run("one commission per subject", func(t *testing.T) {
		err := repo.Save(ctx, recordCommission(t, bargainID, sale, 10, commission.FixedPolicy(decimal.NewFromInt(1))))
		assert.Error(t, err)
	})

	t.Run("find by subject", func(t *testing.T) {
		found, err := repo.FindBySubject(ctx, sale)
		require.NoError(t, err)
		assert.Equal(t, commission.KindPercentage, found.Kind)
		assert.True(t, found.CommissionAmount.Equal(decimal.NewFromInt(125000)))
		assert.True(t, found.NetAmount.Equal(decimal.NewFromInt(2375000)))

		_, err = repo.FindBySubject(ctx, trade.SaleSubject(uuid.New()))
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("sum by kind", func(t *testing.T) {
		total, err := repo.SumForBargain(ctx, bargainID, "")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(175000)), "got %s", total)

		sales, err := repo.SumForBargain(ctx, bargainID, trade.SubjectSale)
		require.NoError(t, err)
		assert.True(t, sales.Equal(decimal.NewFromInt(125000)))

		none, err := repo.SumForBargain(ctx, uuid.New(), "")
		require.NoError(t, err)
		assert.True(t, none.IsZero())
	})

	t.Run("list with subject filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["subject_type"] = trade.SubjectPurchase
		records, err := repo.FindAllForBargain(ctx, bargainID, filter)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, purchase, records[0].Subject)
	})
}

func TestGormCommissionSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommissionSettingsRepository(db)
	ctx := context.Background()
	bargainID := uuid.New()

	t.Run("nothing configured", func(t *testing.T) {
		global, err := repo.FindGlobal(ctx, bargainID)
		require.NoError(t, err)
		assert.Nil(t, global)

		override, err := repo.FindOverride(ctx, bargainID)
		require.NoError(t, err)
		assert.Nil(t, override)
	})

	t.Run("global settings upsert", func(t *testing.T) {
		global, err := commission.NewGlobalSettings(bargainID, commission.Settings{
			Purchase: commission.PercentagePolicy(decimal.NewFromInt(2)),
			Sale:     commission.PercentagePolicy(decimal.NewFromInt(3)),
		})
		require.NoError(t, err)
		require.NoError(t, repo.SaveGlobal(ctx, global))

		require.NoError(t, global.Update(commission.Settings{
			Purchase: commission.FixedPolicy(decimal.NewFromInt(40000)),
			Sale:     commission.PercentagePolicy(decimal.RequireFromString("2.5")),
		}, date(2024, 2, 1)))
		require.NoError(t, repo.SaveGlobal(ctx, global))

		found, err := repo.FindGlobal(ctx, bargainID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, commission.KindFixed, found.Purchase.Kind)
		assert.True(t, found.Sale.Value.Equal(decimal.RequireFromString("2.5")))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("override round trip", func(t *testing.T) {
		override, err := commission.NewOverride(bargainID, commission.Settings{
			Purchase: commission.PercentagePolicy(decimal.NewFromInt(1)),
			Sale:     commission.PercentagePolicy(decimal.NewFromInt(1)),
		}, "launch promotion")
		require.NoError(t, err)
		require.NoError(t, repo.SaveOverride(ctx, override))

		override.Deactivate(date(2024, 3, 1))
		require.NoError(t, repo.SaveOverride(ctx, override))

		found, err := repo.FindOverride(ctx, bargainID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.False(t, found.Active)
		assert.Equal(t, "launch promotion", found.Reason)
	})
}
