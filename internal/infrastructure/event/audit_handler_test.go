package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/infrastructure/logger"
)

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(nil)
	bus.Subscribe(NewAuditLogHandler(zap.New(core)))

	ctx, _ := logger.WithRunID(context.Background(), zap.NewNop())
	bargainID := uuid.New()
	require.NoError(t, bus.Publish(ctx,
		newTestEvent("InstallmentPaid", bargainID),
		newTestEvent("TransactionSettled", bargainID),
	))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "InstallmentPaid", fields["event_type"])
	assert.Equal(t, bargainID.String(), fields["bargain_id"])
	assert.Equal(t, logger.GetRunID(ctx), fields["run_id"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}

func TestHandlerFunc(t *testing.T) {
	var seen []string
	h := NewHandlerFunc(func(ctx context.Context, event shared.DomainEvent) error {
		seen = append(seen, event.EventType())
		return errors.New("ignored by bus")
	}, "SubscriptionRenewed")

	bus := NewInMemoryEventBus(nil)
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("SubscriptionRenewed", uuid.New()),
		newTestEvent("SubscriptionSuspended", uuid.New()),
	))

	assert.Equal(t, []string{"SubscriptionRenewed"}, seen)
	assert.Equal(t, []string{"SubscriptionRenewed"}, h.EventTypes())
}
