package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobargain/backend/internal/domain/shared"
)

func validDetails() Details {
	return Details{
		Amount:          decimal.NewFromInt(500000),
		PaymentDate:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		Method:          MethodBankTransfer,
		ReferenceNumber: " TRX-001 ",
	}
}

func TestNewPayment(t *testing.T) {
	bargainID := uuid.New()
	target := InstallmentTarget(uuid.New())

	p, err := NewPayment(bargainID, target, validDetails())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, target, p.Target)
	assert.Equal(t, "TRX-001", p.ReferenceNumber)
}

func TestNewPayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		mutate func(*Details)
		want   error
	}{
		{"zero amount", InstallmentTarget(uuid.New()), func(d *Details) { d.Amount = decimal.Zero }, shared.ErrInvalidAmount},
		{"negative amount", InstallmentTarget(uuid.New()), func(d *Details) { d.Amount = decimal.NewFromInt(-1) }, shared.ErrInvalidAmount},
		{"amount below a cent", InstallmentTarget(uuid.New()), func(d *Details) { d.Amount = decimal.RequireFromString("0.004") }, shared.ErrInvalidAmount},
		{"sub-cent digits", InstallmentTarget(uuid.New()), func(d *Details) { d.Amount = decimal.RequireFromString("500000.125") }, shared.ErrInvalidAmount},
		{"missing date", SubscriptionTarget(uuid.New()), func(d *Details) { d.PaymentDate = time.Time{} }, shared.ErrInvalidDate},
		{"unknown method", InstallmentTarget(uuid.New()), func(d *Details) { d.Method = "crypto" }, shared.ErrInvalidInput},
		{"unknown target", Target{Type: "sale", ID: uuid.New()}, func(*Details) {}, shared.ErrInvalidInput},
		{"empty target id", Target{Type: TargetInstallment}, func(*Details) {}, shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			_, err := NewPayment(uuid.New(), tt.target, d)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestTotal(t *testing.T) {
	payments := []Payment{
		{Amount: decimal.RequireFromString("100.50")},
		{Amount: decimal.RequireFromString("200.25")},
	}
	assert.True(t, Total(payments).Equal(decimal.RequireFromString("300.75")))
	assert.True(t, Total(nil).IsZero())
}
