package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/trade"
)

// TransactionRequest records a purchase or a sale
type TransactionRequest struct {
	VehicleID         uuid.UUID       `json:"vehicle_id" validate:"required"`
	CustomerID        uuid.UUID       `json:"customer_id" validate:"required"`
	OriginalPrice     decimal.Decimal `json:"original_price"`
	BargainPrice      decimal.Decimal `json:"bargain_price"`
	PaymentType       string          `json:"payment_type" validate:"required,oneof=cash installment"`
	InstallmentMonths int             `json:"installment_months" validate:"gte=0"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	TransactionDate   time.Time       `json:"transaction_date" validate:"required"`
	Notes             string          `json:"notes" validate:"max=1000"`
}

// PreviewRequest asks what a transaction would cost without recording it.
// PaymentType installment adds the schedule to the result.
type PreviewRequest struct {
	Kind              string          `json:"kind" validate:"required,oneof=purchase sale"`
	BargainPrice      decimal.Decimal `json:"bargain_price"`
	PaymentType       string          `json:"payment_type" validate:"required,oneof=cash installment"`
	InstallmentMonths int             `json:"installment_months" validate:"gte=0"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	TransactionDate   time.Time       `json:"transaction_date" validate:"required"`
}

// TransactionListFilter narrows and pages a transaction listing
type TransactionListFilter struct {
	Kind        string `json:"kind" validate:"omitempty,oneof=purchase sale"`
	Status      string `json:"status" validate:"omitempty,oneof=active completed"`
	PaymentType string `json:"payment_type" validate:"omitempty,oneof=cash installment"`
	Page        int    `json:"page" validate:"gte=0"`
	PageSize    int    `json:"page_size" validate:"gte=0,lte=100"`
	OrderBy     string `json:"order_by"`
	OrderDir    string `json:"order_dir" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// CommissionResponse is the commission recorded against a transaction
type CommissionResponse struct {
	Kind             commission.Kind   `json:"kind"`
	Rate             decimal.Decimal   `json:"rate"`
	Source           commission.Source `json:"source,omitempty"`
	OriginalAmount   decimal.Decimal   `json:"original_amount"`
	CommissionAmount decimal.Decimal   `json:"commission_amount"`
	NetAmount        decimal.Decimal   `json:"net_amount"`
	Capped           bool              `json:"capped"`
}

// ScheduledInstallment is one line of a transaction's installment plan
type ScheduledInstallment struct {
	ID             uuid.UUID          `json:"id,omitempty"`
	SequenceNumber int                `json:"sequence_number"`
	Amount         decimal.Decimal    `json:"amount"`
	DueDate        time.Time          `json:"due_date"`
	Status         installment.Status `json:"status,omitempty"`
}

// TransactionResponse is a purchase or sale with its commission and schedule
type TransactionResponse struct {
	ID                uuid.UUID               `json:"id"`
	BargainID         uuid.UUID               `json:"bargain_id"`
	Kind              trade.SubjectType       `json:"kind"`
	VehicleID         uuid.UUID               `json:"vehicle_id"`
	CustomerID        uuid.UUID               `json:"customer_id"`
	OriginalPrice     decimal.Decimal         `json:"original_price"`
	BargainPrice      decimal.Decimal         `json:"bargain_price"`
	CommissionAmount  decimal.Decimal         `json:"commission_amount"`
	NetAmount         decimal.Decimal         `json:"net_amount"`
	PaymentType       trade.PaymentType       `json:"payment_type"`
	InstallmentMonths int                     `json:"installment_months"`
	DownPayment       decimal.Decimal         `json:"down_payment"`
	TransactionDate   time.Time               `json:"transaction_date"`
	Status            trade.TransactionStatus `json:"status"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	PendingAmount     decimal.Decimal         `json:"pending_amount"`
	SettledAt         *time.Time              `json:"settled_at,omitempty"`
	Notes             string                  `json:"notes,omitempty"`
	Version           int                     `json:"version"`
	CreatedAt         time.Time               `json:"created_at"`
	Commission        *CommissionResponse     `json:"commission,omitempty"`
	Installments      []ScheduledInstallment  `json:"installments,omitempty"`
}

// PreviewResponse is the outcome of a preview
type PreviewResponse struct {
	Kind        trade.SubjectType      `json:"kind"`
	PaymentType trade.PaymentType      `json:"payment_type"`
	Commission  CommissionResponse     `json:"commission"`
	DownPayment decimal.Decimal        `json:"down_payment"`
	Remaining   decimal.Decimal        `json:"remaining"`
	Schedule    []ScheduledInstallment `json:"schedule,omitempty"`
}

// ToTransactionResponse converts a transaction to a response
func ToTransactionResponse(t *trade.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		BargainID:         t.BargainID,
		Kind:              t.Kind,
		VehicleID:         t.VehicleID,
		CustomerID:        t.CustomerID,
		OriginalPrice:     t.OriginalPrice,
		BargainPrice:      t.BargainPrice,
		CommissionAmount:  t.CommissionAmount,
		NetAmount:         t.NetAmount,
		PaymentType:       t.PaymentType,
		InstallmentMonths: t.InstallmentMonths,
		DownPayment:       t.DownPayment,
		TransactionDate:   t.TransactionDate,
		Status:            t.Status,
		PaidAmount:        t.PaidAmount,
		PendingAmount:     t.PendingAmount,
		SettledAt:         t.SettledAt,
		Notes:             t.Notes,
		Version:           t.Version,
		CreatedAt:         t.CreatedAt,
	}
}

func toCommissionResponse(result commission.Result, source commission.Source) CommissionResponse {
	return CommissionResponse{
		Kind:             result.Policy.Kind,
		Rate:             result.Policy.Value,
		Source:           source,
		OriginalAmount:   result.OriginalAmount,
		CommissionAmount: result.CommissionAmount,
		NetAmount:        result.NetAmount,
		Capped:           result.Capped(),
	}
}

func toRecordedCommissionResponse(c *commission.Commission) *CommissionResponse {
	return &CommissionResponse{
		Kind:             c.Kind,
		Rate:             c.Rate,
		OriginalAmount:   c.OriginalAmount,
		CommissionAmount: c.CommissionAmount,
		NetAmount:        c.NetAmount,
		Capped:           c.Kind == commission.KindFixed && c.Rate.GreaterThan(c.CommissionAmount),
	}
}

func toScheduledInstallments(installments []*installment.Installment) []ScheduledInstallment {
	out := make([]ScheduledInstallment, len(installments))
	for i, inst := range installments {
		out[i] = ScheduledInstallment{
			ID:             inst.ID,
			SequenceNumber: inst.SequenceNumber,
			Amount:         inst.Amount,
			DueDate:        inst.DueDate,
			Status:         inst.Status,
		}
	}
	return out
}

func linesToScheduled(lines []installment.Line) []ScheduledInstallment {
	out := make([]ScheduledInstallment, len(lines))
	for i, line := range lines {
		out[i] = ScheduledInstallment{
			SequenceNumber: line.SequenceNumber,
			Amount:         line.Amount,
			DueDate:        line.DueDate,
		}
	}
	return out
}
