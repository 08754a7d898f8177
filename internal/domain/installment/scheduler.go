package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
	"github.com/autobargain/backend/internal/domain/trade"
)

// MaxTermMonths bounds the length of a plan
const MaxTermMonths = 120

// Plan is the input of the scheduler
type Plan struct {
	NetAmount   decimal.Decimal `json:"net_amount"`
	DownPayment decimal.Decimal `json:"down_payment"`
	TermMonths  int             `json:"term_months"`
	StartDate   time.Time       `json:"start_date"`
}

// Validate checks the plan can be scheduled
func (p Plan) Validate() error {
	if p.NetAmount.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount, "net amount cannot be negative: %s", p.NetAmount)
	}
	if p.DownPayment.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidTerm, "down payment cannot be negative: %s", p.DownPayment)
	}
	if err := valueobject.CheckMinorUnits("net amount", p.NetAmount); err != nil {
		return err
	}
	if err := valueobject.CheckMinorUnits("down payment", p.DownPayment); err != nil {
		return err
	}
	if p.DownPayment.GreaterThan(p.NetAmount) {
		return shared.NewDomainErrorf(shared.CodeInvalidTerm, "down payment %s exceeds net amount %s", p.DownPayment, p.NetAmount)
	}
	if p.TermMonths <= 0 || p.TermMonths > MaxTermMonths {
		return shared.NewDomainErrorf(shared.CodeInvalidTerm, "term must be between 1 and %d months, got %d", MaxTermMonths, p.TermMonths)
	}
	if p.StartDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidDate, "start date is required")
	}
	return nil
}

// Remaining is the amount left to schedule after the down payment
func (p Plan) Remaining() decimal.Decimal {
	return p.NetAmount.Sub(p.DownPayment)
}

// Line is one scheduled obligation
type Line struct {
	SequenceNumber int             `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
}

// Schedule splits the remaining amount of a plan into TermMonths monthly lines.
//
// Every line but the last is the remaining amount divided by the term, floored
// to the currency minor unit; the last line takes whatever is left, so the
// lines always sum to NetAmount - DownPayment exactly. Line i (0-based) is due
// i+1 calendar months after StartDate, clamped to the end of shorter months.
func Schedule(plan Plan) ([]Line, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	parts, err := valueobject.NewMoneyPKR(plan.Remaining()).Split(plan.TermMonths)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidTerm, err.Error())
	}

	lines := make([]Line, len(parts))
	for i, part := range parts {
		lines[i] = Line{
			SequenceNumber: i + 1,
			Amount:         part.Amount(),
			DueDate:        calendar.AddMonths(plan.StartDate, i+1),
		}
	}
	return lines, nil
}

// NewSchedule schedules a plan and creates the installments of the subject.
// Statuses are derived as of the plan's start date.
func NewSchedule(bargainID uuid.UUID, subject trade.Subject, plan Plan) ([]*Installment, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	lines, err := Schedule(plan)
	if err != nil {
		return nil, err
	}

	installments := make([]*Installment, len(lines))
	for i, line := range lines {
		installments[i] = newInstallment(bargainID, subject, line, plan.StartDate)
	}
	return installments, nil
}
