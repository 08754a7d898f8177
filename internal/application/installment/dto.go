package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/trade"
)

// RecordPaymentRequest is a payment received against one installment
type RecordPaymentRequest struct {
	InstallmentID   uuid.UUID       `json:"installment_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	Method          string          `json:"method" validate:"required,oneof=cash bank_transfer cheque online"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

// InstallmentResponse is an installment with its status derived as of the request time
type InstallmentResponse struct {
	ID             uuid.UUID          `json:"id"`
	BargainID      uuid.UUID          `json:"bargain_id"`
	Subject        trade.Subject      `json:"subject"`
	SequenceNumber int                `json:"sequence_number"`
	Amount         decimal.Decimal    `json:"amount"`
	DueDate        time.Time          `json:"due_date"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	Outstanding    decimal.Decimal    `json:"outstanding"`
	Overpayment    decimal.Decimal    `json:"overpayment"`
	Status         installment.Status `json:"status"`
	PaidDate       *time.Time         `json:"paid_date,omitempty"`
	Version        int                `json:"version"`
}

// PaymentResponse is a recorded payment and the installment it was applied to
type PaymentResponse struct {
	PaymentID          uuid.UUID               `json:"payment_id"`
	Amount             decimal.Decimal         `json:"amount"`
	PaymentDate        time.Time               `json:"payment_date"`
	Method             payment.Method          `json:"method"`
	ReferenceNumber    string                  `json:"reference_number,omitempty"`
	Installment        InstallmentResponse     `json:"installment"`
	TransactionPaid    decimal.Decimal         `json:"transaction_paid"`
	TransactionPending decimal.Decimal         `json:"transaction_pending"`
	TransactionStatus  trade.TransactionStatus `json:"transaction_status"`
}

// SummaryResponse totals the installments of one transaction
type SummaryResponse struct {
	Subject trade.Subject `json:"subject"`
	installment.Summary
	Settled bool `json:"settled"`
}

// ToInstallmentResponse converts an installment, deriving its status as of now
func ToInstallmentResponse(inst *installment.Installment, now time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:             inst.ID,
		BargainID:      inst.BargainID,
		Subject:        inst.Subject,
		SequenceNumber: inst.SequenceNumber,
		Amount:         inst.Amount,
		DueDate:        inst.DueDate,
		PaidAmount:     inst.PaidAmount,
		Outstanding:    inst.Outstanding(),
		Overpayment:    inst.Overpayment(),
		Status:         inst.StatusAt(now),
		PaidDate:       inst.PaidDate,
		Version:        inst.Version,
	}
}

func toInstallmentResponses(installments []installment.Installment, now time.Time) []InstallmentResponse {
	out := make([]InstallmentResponse, len(installments))
	for i := range installments {
		out[i] = ToInstallmentResponse(&installments[i], now)
	}
	return out
}
