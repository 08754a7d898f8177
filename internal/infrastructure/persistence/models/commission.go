package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/trade"
)

// CommissionModel is the persistence model for a recorded commission.
// (subject_type, subject_id) is unique: one commission per transaction.
type CommissionModel struct {
	BargainAggregateModel
	SubjectType      trade.SubjectType `gorm:"type:varchar(10);not null;uniqueIndex:idx_commission_subject,priority:1"`
	SubjectID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_commission_subject,priority:2"`
	OriginalAmount   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	CommissionKind   commission.Kind   `gorm:"type:varchar(20);not null"`
	Rate             decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CommissionAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	NetAmount        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TransactionDate  time.Time         `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission.
func (m *CommissionModel) ToDomain() *commission.Commission {
	return &commission.Commission{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Subject:              trade.Subject{Type: m.SubjectType, ID: m.SubjectID},
		OriginalAmount:       m.OriginalAmount,
		Kind:                 m.CommissionKind,
		Rate:                 m.Rate,
		CommissionAmount:     m.CommissionAmount,
		NetAmount:            m.NetAmount,
		TransactionDate:      m.TransactionDate,
	}
}

// CommissionModelFromDomain creates a persistence model from a domain Commission.
func CommissionModelFromDomain(c *commission.Commission) *CommissionModel {
	m := &CommissionModel{
		SubjectType:      c.Subject.Type,
		SubjectID:        c.Subject.ID,
		OriginalAmount:   c.OriginalAmount,
		CommissionKind:   c.Kind,
		Rate:             c.Rate,
		CommissionAmount: c.CommissionAmount,
		NetAmount:        c.NetAmount,
		TransactionDate:  c.TransactionDate,
	}
	m.FromDomainBargainAggregateRoot(c.BargainAggregateRoot)
	return m
}

// SettingsColumns are the policy columns shared by settings and overrides
type SettingsColumns struct {
	PurchaseKind  commission.Kind `gorm:"type:varchar(20);not null"`
	PurchaseValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SaleKind      commission.Kind `gorm:"type:varchar(20);not null"`
	SaleValue     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

func settingsColumnsFromDomain(s commission.Settings) SettingsColumns {
	return SettingsColumns{
		PurchaseKind:  s.Purchase.Kind,
		PurchaseValue: s.Purchase.Value,
		SaleKind:      s.Sale.Kind,
		SaleValue:     s.Sale.Value,
	}
}

func (c SettingsColumns) toDomain() commission.Settings {
	return commission.Settings{
		Purchase: commission.Policy{Kind: c.PurchaseKind, Value: c.PurchaseValue},
		Sale:     commission.Policy{Kind: c.SaleKind, Value: c.SaleValue},
	}
}

// CommissionSettingsModel is a bargain's global commission settings, one row per bargain.
type CommissionSettingsModel struct {
	AggregateModel
	BargainID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SettingsColumns
}

// TableName returns the table name for GORM
func (CommissionSettingsModel) TableName() string {
	return "commission_settings"
}

// ToDomain converts the persistence model to domain GlobalSettings.
func (m *CommissionSettingsModel) ToDomain() *commission.GlobalSettings {
	g := &commission.GlobalSettings{Settings: m.SettingsColumns.toDomain()}
	g.BaseAggregateRoot = m.ToDomainAggregateRoot()
	g.BargainID = m.BargainID
	return g
}

// CommissionSettingsModelFromDomain creates a persistence model from domain GlobalSettings.
func CommissionSettingsModelFromDomain(g *commission.GlobalSettings) *CommissionSettingsModel {
	m := &CommissionSettingsModel{
		BargainID:       g.BargainID,
		SettingsColumns: settingsColumnsFromDomain(g.Settings),
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	return m
}

// CommissionOverrideModel is a bargain-specific override, one row per bargain.
type CommissionOverrideModel struct {
	AggregateModel
	BargainID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SettingsColumns
	Active bool   `gorm:"not null;default:true"`
	Reason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommissionOverrideModel) TableName() string {
	return "commission_overrides"
}

// ToDomain converts the persistence model to a domain Override.
func (m *CommissionOverrideModel) ToDomain() *commission.Override {
	o := &commission.Override{
		Settings: m.SettingsColumns.toDomain(),
		Active:   m.Active,
		Reason:   m.Reason,
	}
	o.BaseAggregateRoot = m.ToDomainAggregateRoot()
	o.BargainID = m.BargainID
	return o
}

// CommissionOverrideModelFromDomain creates a persistence model from a domain Override.
func CommissionOverrideModelFromDomain(o *commission.Override) *CommissionOverrideModel {
	m := &CommissionOverrideModel{
		BargainID:       o.BargainID,
		SettingsColumns: settingsColumnsFromDomain(o.Settings),
		Active:          o.Active,
		Reason:          o.Reason,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}
