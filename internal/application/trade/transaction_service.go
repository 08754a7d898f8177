package trade

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

// PolicyResolver returns the commission policy that applies to a bargain's
// purchases or sales
type PolicyResolver interface {
	Resolve(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType) (commission.Resolved, error)
}

// TransactionService records purchases and sales together with their
// commission and installment plan
type TransactionService struct {
	scope           appshared.TransactionScope
	transactionRepo trade.TransactionRepository
	commissionRepo  commission.Repository
	policies        PolicyResolver
	allowedTerms    []int
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.BusinessMetrics
	clock           appshared.Clock
}

// NewTransactionService creates a new TransactionService. allowedTerms lists
// the installment terms in months offered to customers; empty allows any term.
func NewTransactionService(
	scope appshared.TransactionScope,
	transactionRepo trade.TransactionRepository,
	commissionRepo commission.Repository,
	policies PolicyResolver,
	allowedTerms []int,
) *TransactionService {
	return &TransactionService{
		scope:           scope,
		transactionRepo: transactionRepo,
		commissionRepo:  commissionRepo,
		policies:        policies,
		allowedTerms:    slices.Clone(allowedTerms),
		clock:           appshared.NewClock(nil),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *TransactionService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// SetClock sets the clock used for dates and timestamps
func (s *TransactionService) SetClock(clock appshared.Clock) {
	s.clock = clock
}

// PreviewTransaction computes the commission and, for installment payments,
// the schedule of a prospective transaction. Nothing is persisted.
func (s *TransactionService) PreviewTransaction(ctx context.Context, bargainID uuid.UUID, req PreviewRequest) (*PreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "preview_transaction",
		telemetry.SpanAttrBargainID, bargainID.String(),
		telemetry.SpanAttrTransactionKind, req.Kind)
	defer span.End()

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	kind := trade.SubjectType(req.Kind)
	paymentType := trade.PaymentType(req.PaymentType)
	if err := s.checkTerm(paymentType, req.InstallmentMonths); err != nil {
		return nil, err
	}

	resolved, err := s.policies.Resolve(ctx, bargainID, kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := commission.Compute(req.BargainPrice, resolved.Policy)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResponse{
		Kind:        kind,
		PaymentType: paymentType,
		Commission:  toCommissionResponse(result, resolved.Source),
		DownPayment: req.DownPayment,
		Remaining:   result.NetAmount,
	}
	if paymentType != trade.PaymentTypeInstallment {
		resp.DownPayment = decimal.Zero
		return resp, nil
	}

	plan := installment.Plan{
		NetAmount:   result.NetAmount,
		DownPayment: req.DownPayment,
		TermMonths:  req.InstallmentMonths,
		StartDate:   s.clock.DateOf(req.TransactionDate),
	}
	lines, err := installment.Schedule(plan)
	if err != nil {
		return nil, err
	}
	resp.Remaining = plan.Remaining()
	resp.Schedule = linesToScheduled(lines)
	return resp, nil
}

// CreatePurchase records a vehicle bought from a seller-capable customer.
// The vehicle comes back into stock as available.
func (s *TransactionService) CreatePurchase(ctx context.Context, bargainID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, bargainID, trade.SubjectPurchase, req)
}

// CreateSale records a vehicle sold to a buyer-capable customer. The vehicle
// must be available or reserved and is marked sold.
func (s *TransactionService) CreateSale(ctx context.Context, bargainID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, bargainID, trade.SubjectSale, req)
}

func (s *TransactionService) create(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, req TransactionRequest) (*TransactionResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "create_"+kind.String(),
		telemetry.SpanAttrBargainID, bargainID.String(),
		telemetry.SpanAttrTransactionKind, kind.String())
	defer span.End()
	defer s.metrics.ObserveOperation(ctx, "create_"+kind.String(), start)

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	paymentType := trade.PaymentType(req.PaymentType)
	if err := s.checkTerm(paymentType, req.InstallmentMonths); err != nil {
		return nil, err
	}

	resolved, err := s.policies.Resolve(ctx, bargainID, kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := commission.Compute(req.BargainPrice, resolved.Policy)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	date := s.clock.DateOf(req.TransactionDate)

	var (
		tx           *trade.Transaction
		recorded     *commission.Commission
		installments []*installment.Installment
	)
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		customer, err := repos.Customers().FindByIDForBargain(ctx, bargainID, req.CustomerID)
		if err != nil {
			return err
		}
		if !customer.CanTakePart(kind) {
			return shared.NewDomainErrorf(shared.CodeInvalidInput, "customer %s (%s) cannot take part in a %s",
				customer.Name, customer.Type, kind)
		}

		vehicle, err := repos.Vehicles().FindByIDForBargain(ctx, bargainID, req.VehicleID)
		if err != nil {
			return err
		}
		version := vehicle.GetVersion()
		if kind == trade.SubjectSale {
			err = vehicle.MarkSold(now)
		} else {
			err = vehicle.Restock(now)
		}
		if err != nil {
			return err
		}

		tx, err = trade.NewTransaction(bargainID, trade.Terms{
			Kind:              kind,
			VehicleID:         vehicle.ID,
			CustomerID:        customer.ID,
			OriginalPrice:     req.OriginalPrice,
			BargainPrice:      req.BargainPrice,
			CommissionAmount:  result.CommissionAmount,
			PaymentType:       paymentType,
			InstallmentMonths: req.InstallmentMonths,
			DownPayment:       req.DownPayment,
			TransactionDate:   date,
			Notes:             req.Notes,
		})
		if err != nil {
			return err
		}
		recorded, err = commission.NewCommission(bargainID, tx.Subject(), result, date)
		if err != nil {
			return err
		}
		if paymentType == trade.PaymentTypeInstallment {
			installments, err = installment.NewSchedule(bargainID, tx.Subject(), installment.Plan{
				NetAmount:   tx.NetAmount,
				DownPayment: tx.DownPayment,
				TermMonths:  tx.InstallmentMonths,
				StartDate:   date,
			})
			if err != nil {
				return err
			}
			if fullyPaid(installments) {
				// a down payment covering the net amount leaves nothing to collect
				if err := tx.Settle(now); err != nil {
					return err
				}
			}
		}

		if vehicle.GetVersion() != version {
			if err := repos.Vehicles().SaveWithLock(ctx, vehicle); err != nil {
				return err
			}
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		if err := repos.Commissions().Save(ctx, recorded); err != nil {
			return err
		}
		if len(installments) > 0 {
			if err := repos.Installments().SaveAll(ctx, installments); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, tx.ID.String())
	s.metrics.RecordTransaction(ctx, bargainID, kind.String(), paymentType.String())
	s.metrics.RecordCommission(ctx, bargainID, kind.String(), result.Policy.Kind.String(), string(resolved.Source), result.CommissionAmount)
	s.metrics.RecordInstallmentsScheduled(ctx, bargainID, len(installments))

	s.publish(ctx, tx, recorded, installments)

	logger.L(ctx).Info("transaction recorded",
		zap.String("bargain_id", bargainID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("kind", kind.String()),
		zap.String("payment_type", paymentType.String()),
		zap.String("commission", result.CommissionAmount.StringFixed(2)),
		zap.String("policy_source", string(resolved.Source)),
		zap.Int("installments", len(installments)))

	response := ToTransactionResponse(tx)
	commissionResp := toCommissionResponse(result, resolved.Source)
	response.Commission = &commissionResp
	response.Installments = toScheduledInstallments(installments)
	return &response, nil
}

// GetTransaction returns a purchase or sale with its recorded commission
func (s *TransactionService) GetTransaction(ctx context.Context, bargainID, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByIDForBargain(ctx, bargainID, transactionID)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(tx)

	recorded, err := s.commissionRepo.FindBySubject(ctx, tx.Subject())
	switch {
	case err == nil:
		response.Commission = toRecordedCommissionResponse(recorded)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	return &response, nil
}

// ListTransactions lists a bargain's purchases and sales, newest first by default
func (s *TransactionService) ListTransactions(ctx context.Context, bargainID uuid.UUID, filter TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	if err := appshared.ValidateRequest(filter); err != nil {
		return nil, err
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "transaction_date"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = trade.TransactionStatus(filter.Status)
	}
	if filter.PaymentType != "" {
		domainFilter.Filters["payment_type"] = trade.PaymentType(filter.PaymentType)
	}
	kind := trade.SubjectType(filter.Kind)

	transactions, err := s.transactionRepo.FindAllForBargain(ctx, bargainID, kind, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactionRepo.CountForBargain(ctx, bargainID, kind, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		items[i] = ToTransactionResponse(&transactions[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.Limit())
	return &page, nil
}

func fullyPaid(installments []*installment.Installment) bool {
	for _, inst := range installments {
		if !inst.IsPaid() {
			return false
		}
	}
	return len(installments) > 0
}

func (s *TransactionService) checkTerm(paymentType trade.PaymentType, months int) error {
	if paymentType != trade.PaymentTypeInstallment || len(s.allowedTerms) == 0 {
		return nil
	}
	if !slices.Contains(s.allowedTerms, months) {
		return shared.NewDomainErrorf(shared.CodeInvalidTerm, "installment term of %d months is not offered; allowed terms are %v",
			months, s.allowedTerms)
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, tx *trade.Transaction, recorded *commission.Commission, installments []*installment.Installment) {
	events := tx.GetDomainEvents()
	events = append(events, recorded.GetDomainEvents()...)
	for _, inst := range installments {
		events = append(events, inst.GetDomainEvents()...)
	}
	tx.ClearDomainEvents()
	recorded.ClearDomainEvents()
	for _, inst := range installments {
		inst.ClearDomainEvents()
	}

	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish transaction events",
			zap.String("transaction_id", tx.ID.String()),
			zap.Int("events", len(events)),
			zap.Error(err))
	}
}
