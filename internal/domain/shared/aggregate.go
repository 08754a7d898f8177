package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is implemented by every aggregate that carries a version and
// collects domain events until they are published.
type AggregateRoot interface {
	GetID() uuid.UUID
	GetVersion() int
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides the version used for optimistic locking and the
// pending domain event list.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// BargainAggregateRoot is an aggregate owned by a single bargain (dealership tenant)
type BargainAggregateRoot struct {
	BaseAggregateRoot
	BargainID uuid.UUID
}

// NewBargainAggregateRoot creates a new aggregate root scoped to a bargain
func NewBargainAggregateRoot(bargainID uuid.UUID) BargainAggregateRoot {
	return BargainAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		BargainID:         bargainID,
	}
}
