package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/subscription"
)

// SubscriptionModel is the persistence model for the Subscription aggregate root.
type SubscriptionModel struct {
	BargainAggregateModel
	Plan      subscription.Plan   `gorm:"column:plan_type;type:varchar(20);not null"`
	StartDate time.Time           `gorm:"type:date;not null"`
	EndDate   time.Time           `gorm:"type:date;not null;index"`
	Amount    decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Suspended bool                `gorm:"not null;default:false"`
	Status    subscription.Status `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription.
func (m *SubscriptionModel) ToDomain() *subscription.Subscription {
	return &subscription.Subscription{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Plan:                 m.Plan,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		Amount:               m.Amount,
		Suspended:            m.Suspended,
		Status:               m.Status,
	}
}

// SubscriptionModelFromDomain creates a persistence model from a domain Subscription.
func SubscriptionModelFromDomain(s *subscription.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		Plan:      s.Plan,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Amount:    s.Amount,
		Suspended: s.Suspended,
		Status:    s.Status,
	}
	m.FromDomainBargainAggregateRoot(s.BargainAggregateRoot)
	return m
}
