package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/payment"
)

// PaymentModel is the persistence model for a payment. Rows are never updated.
type PaymentModel struct {
	BaseModel
	BargainID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	TargetType      payment.TargetType `gorm:"type:varchar(20);not null;index:idx_payment_target,priority:1"`
	TargetID        uuid.UUID          `gorm:"type:uuid;not null;index:idx_payment_target,priority:2"`
	Amount          decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time          `gorm:"type:date;not null"`
	PaymentMethod   payment.Method     `gorm:"type:varchar(20);not null"`
	ReferenceNumber string             `gorm:"type:varchar(100)"`
	Notes           string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		BargainID:       m.BargainID,
		Target:          payment.Target{Type: m.TargetType, ID: m.TargetID},
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Method:          m.PaymentMethod,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		BargainID:       p.BargainID,
		TargetType:      p.Target.Type,
		TargetID:        p.Target.ID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		PaymentMethod:   p.Method,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
