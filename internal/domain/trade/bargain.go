package trade

import (
	"strings"
	"time"

	"github.com/autobargain/backend/internal/domain/shared"
)

// Bargain is a dealership. Every customer, vehicle and transaction belongs to one.
type Bargain struct {
	shared.BaseAggregateRoot
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	IsActive      bool
}

// NewBargain creates an active bargain
func NewBargain(name, contactPerson, phone string) (*Bargain, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain name cannot exceed 200 characters")
	}
	return &Bargain{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ContactPerson:     strings.TrimSpace(contactPerson),
		Phone:             strings.TrimSpace(phone),
		IsActive:          true,
	}, nil
}

// Deactivate stops the bargain from recording new transactions
func (b *Bargain) Deactivate(at time.Time) {
	if !b.IsActive {
		return
	}
	b.IsActive = false
	b.Touch(at)
	b.IncrementVersion()
}

// Activate re-enables the bargain
func (b *Bargain) Activate(at time.Time) {
	if b.IsActive {
		return
	}
	b.IsActive = true
	b.Touch(at)
	b.IncrementVersion()
}
