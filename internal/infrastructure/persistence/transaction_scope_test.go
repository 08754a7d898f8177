package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	bargainID := uuid.New()

	t.Run("commits all writes", func(t *testing.T) {
		sale := newSale(t, bargainID, trade.PaymentTypeInstallment)
		err := scope.Execute(ctx, func(repos appshared.Repositories) error {
			if err := repos.Transactions().Save(ctx, sale); err != nil {
				return err
			}
			_, insts := scheduleFixture(t, bargainID)
			return repos.Installments().SaveAll(ctx, insts)
		})
		require.NoError(t, err)

		_, err = NewGormTransactionRepository(db).FindByID(ctx, sale.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sale := newSale(t, bargainID, trade.PaymentTypeCash)
		boom := errors.New("commission write failed")
		err := scope.Execute(ctx, func(repos appshared.Repositories) error {
			require.NoError(t, repos.Transactions().Save(ctx, sale))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormTransactionRepository(db).FindByID(ctx, sale.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
