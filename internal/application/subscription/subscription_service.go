package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

// SyncBatchSize is how many subscriptions a status sync loads per page
const SyncBatchSize = 100

// SubscriptionService bills bargains for use of the system and keeps each
// subscription's stored status in step with its term
type SubscriptionService struct {
	scope            appshared.TransactionScope
	subscriptionRepo subscription.Repository
	fees             subscription.FeeSchedule
	expiringSoonDays int
	batchSize        int
	eventPublisher   shared.EventPublisher
	metrics          *telemetry.BusinessMetrics
	clock            appshared.Clock
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	scope appshared.TransactionScope,
	subscriptionRepo subscription.Repository,
	fees subscription.FeeSchedule,
	expiringSoonDays int,
) *SubscriptionService {
	if expiringSoonDays <= 0 {
		expiringSoonDays = subscription.DefaultExpiringSoonDays
	}
	return &SubscriptionService{
		scope:            scope,
		subscriptionRepo: subscriptionRepo,
		fees:             fees,
		expiringSoonDays: expiringSoonDays,
		batchSize:        SyncBatchSize,
		clock:            appshared.NewClock(nil),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SubscriptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *SubscriptionService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// SetClock sets the clock used for dates and timestamps
func (s *SubscriptionService) SetClock(clock appshared.Clock) {
	s.clock = clock
}

// SetBatchSize sets how many subscriptions Sync loads per page
func (s *SubscriptionService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// Subscribe starts a bargain's first subscription from a fee payment
func (s *SubscriptionService) Subscribe(ctx context.Context, bargainID uuid.UUID, req PlanPaymentRequest) (*RenewalResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", "subscribe",
		telemetry.SpanAttrBargainID, bargainID.String(),
		telemetry.SpanAttrAmount, req.Amount.String())
	defer span.End()
	defer s.metrics.ObserveOperation(ctx, "subscribe", start)

	details, err := s.details(req)
	if err != nil {
		return nil, err
	}
	now := s.clock.LocalNow()

	var (
		sub *subscription.Subscription
		p   *payment.Payment
	)
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		existing, err := repos.Subscriptions().FindLatestForBargain(ctx, bargainID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError(shared.CodeInvalidState, "bargain already has a subscription, renew it instead")
		}

		sub, p, err = subscription.NewSubscription(bargainID, subscription.Plan(req.Plan), s.fees, details, now)
		if err != nil {
			return err
		}
		if err := repos.Subscriptions().Save(ctx, sub); err != nil {
			return err
		}
		return repos.Payments().Save(ctx, p)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.paid(ctx, "subscription started", sub, p, now), nil
}

// Renew restarts the bargain's subscription from a new fee payment. The new
// term starts on the payment date and any suspension is lifted.
func (s *SubscriptionService) Renew(ctx context.Context, bargainID uuid.UUID, req PlanPaymentRequest) (*RenewalResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", "renew",
		telemetry.SpanAttrBargainID, bargainID.String(),
		telemetry.SpanAttrAmount, req.Amount.String())
	defer span.End()
	defer s.metrics.ObserveOperation(ctx, "renew", start)

	details, err := s.details(req)
	if err != nil {
		return nil, err
	}
	now := s.clock.LocalNow()

	var (
		sub *subscription.Subscription
		p   *payment.Payment
	)
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		sub, err = repos.Subscriptions().FindLatestForBargain(ctx, bargainID)
		if err != nil {
			return err
		}
		p, err = sub.Renew(subscription.Plan(req.Plan), s.fees, details, now)
		if err != nil {
			return err
		}
		if err := repos.Subscriptions().SaveWithLock(ctx, sub); err != nil {
			return err
		}
		return repos.Payments().Save(ctx, p)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.paid(ctx, "subscription renewed", sub, p, now), nil
}

// Suspend blocks the bargain's subscription regardless of its end date
func (s *SubscriptionService) Suspend(ctx context.Context, bargainID uuid.UUID) (*SubscriptionResponse, error) {
	return s.change(ctx, bargainID, "suspend", func(sub *subscription.Subscription, now time.Time) error {
		return sub.Suspend(now)
	})
}

// Resume lifts a suspension
func (s *SubscriptionService) Resume(ctx context.Context, bargainID uuid.UUID) (*SubscriptionResponse, error) {
	return s.change(ctx, bargainID, "resume", func(sub *subscription.Subscription, now time.Time) error {
		return sub.Resume(now)
	})
}

// Status returns the bargain's subscription with its term state as of now
func (s *SubscriptionService) Status(ctx context.Context, bargainID uuid.UUID, now time.Time) (*SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindLatestForBargain(ctx, bargainID)
	if err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub, now.In(s.clock.Location()), s.expiringSoonDays)
	return &response, nil
}

// Sync walks every subscription and refreshes its stored status from its term
// as of now. A subscription that fails to save is logged and counted; the
// sync carries on with the rest.
func (s *SubscriptionService) Sync(ctx context.Context, now time.Time) (*SyncResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", "sync")
	defer span.End()
	defer s.metrics.ObserveOperation(ctx, "sync_subscriptions", start)

	local := now.In(s.clock.Location())
	result := &SyncResult{}
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.subscriptionRepo.FindAll(ctx, offset, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return result, err
		}
		for i := range batch {
			sub := &batch[i]
			result.Visited++
			if !sub.Sync(local) {
				s.metrics.RecordSubscriptionSynced(ctx, string(sub.Status))
				continue
			}
			if err := s.subscriptionRepo.SaveWithLock(ctx, sub); err != nil {
				result.Failed++
				logger.L(ctx).Warn("failed to save synced subscription status",
					zap.String("subscription_id", sub.ID.String()),
					zap.String("bargain_id", sub.BargainID.String()),
					zap.Error(err))
				continue
			}
			result.Changed++
			s.metrics.RecordSubscriptionSynced(ctx, string(sub.Status))
		}
		if len(batch) < s.batchSize {
			break
		}
	}

	logger.L(ctx).Info("subscription status sync finished",
		zap.Int("visited", result.Visited),
		zap.Int("changed", result.Changed),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *SubscriptionService) details(req PlanPaymentRequest) (payment.Details, error) {
	if err := appshared.ValidateRequest(req); err != nil {
		return payment.Details{}, err
	}
	details := payment.Details{
		Amount:          req.Amount,
		PaymentDate:     s.clock.DateOf(req.PaymentDate),
		Method:          payment.Method(req.Method),
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if err := details.Validate(); err != nil {
		return payment.Details{}, err
	}
	return details, nil
}

func (s *SubscriptionService) paid(ctx context.Context, msg string, sub *subscription.Subscription, p *payment.Payment, now time.Time) *RenewalResponse {
	s.metrics.RecordPayment(ctx, sub.BargainID, string(payment.TargetSubscription), p.Method.String(), p.Amount)
	logger.L(ctx).Info(msg,
		zap.String("bargain_id", sub.BargainID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.String("plan", sub.Plan.String()),
		zap.Time("end_date", sub.EndDate),
		zap.String("payment_id", p.ID.String()))

	s.publish(ctx, sub.GetDomainEvents())
	sub.ClearDomainEvents()

	return &RenewalResponse{
		Subscription: ToSubscriptionResponse(sub, now, s.expiringSoonDays),
		PaymentID:    p.ID,
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate,
	}
}

func (s *SubscriptionService) change(ctx context.Context, bargainID uuid.UUID, op string, fn func(*subscription.Subscription, time.Time) error) (*SubscriptionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", op,
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	now := s.clock.LocalNow()
	var sub *subscription.Subscription
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		sub, err = repos.Subscriptions().FindLatestForBargain(ctx, bargainID)
		if err != nil {
			return err
		}
		if err := fn(sub, now); err != nil {
			return err
		}
		return repos.Subscriptions().SaveWithLock(ctx, sub)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("subscription status changed",
		zap.String("operation", op),
		zap.String("bargain_id", bargainID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.String("status", string(sub.Status)))

	s.publish(ctx, sub.GetDomainEvents())
	sub.ClearDomainEvents()

	response := ToSubscriptionResponse(sub, now, s.expiringSoonDays)
	return &response, nil
}

func (s *SubscriptionService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish subscription events",
			zap.Int("events", len(events)),
			zap.Error(err))
	}
}
