package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/trade"
)

// InstallmentModel is the persistence model for the Installment aggregate root.
type InstallmentModel struct {
	BargainAggregateModel
	SubjectType    trade.SubjectType  `gorm:"type:varchar(10);not null;uniqueIndex:idx_installment_subject_seq,priority:1"`
	SubjectID      uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_installment_subject_seq,priority:2"`
	SequenceNumber int                `gorm:"not null;uniqueIndex:idx_installment_subject_seq,priority:3"`
	Amount         decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	DueDate        time.Time          `gorm:"type:date;not null;index"`
	PaidAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Status         installment.Status `gorm:"type:varchar(10);not null;index"`
	PaidDate       *time.Time         `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() *installment.Installment {
	return &installment.Installment{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Subject:              trade.Subject{Type: m.SubjectType, ID: m.SubjectID},
		SequenceNumber:       m.SequenceNumber,
		Amount:               m.Amount,
		DueDate:              m.DueDate,
		PaidAmount:           m.PaidAmount,
		Status:               m.Status,
		PaidDate:             m.PaidDate,
	}
}

// InstallmentModelFromDomain creates a persistence model from a domain Installment.
func InstallmentModelFromDomain(i *installment.Installment) *InstallmentModel {
	m := &InstallmentModel{
		SubjectType:    i.Subject.Type,
		SubjectID:      i.Subject.ID,
		SequenceNumber: i.SequenceNumber,
		Amount:         i.Amount,
		DueDate:        i.DueDate,
		PaidAmount:     i.PaidAmount,
		Status:         i.Status,
		PaidDate:       i.PaidDate,
	}
	m.FromDomainBargainAggregateRoot(i.BargainAggregateRoot)
	return m
}
