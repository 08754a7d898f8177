package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the version used for optimistic locking
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to a domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// BargainAggregateModel provides the columns of aggregates owned by a bargain
type BargainAggregateModel struct {
	AggregateModel
	BargainID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainBargainAggregateRoot populates BargainAggregateModel from the domain root
func (m *BargainAggregateModel) FromDomainBargainAggregateRoot(b shared.BargainAggregateRoot) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BargainID = b.BargainID
}

// ToDomainBargainAggregateRoot converts BargainAggregateModel to the domain root
func (m *BargainAggregateModel) ToDomainBargainAggregateRoot() shared.BargainAggregateRoot {
	return shared.BargainAggregateRoot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BargainID:         m.BargainID,
	}
}
