package trade

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
)

// SubjectType tells which kind of transaction a commission or installment belongs to
type SubjectType string

const (
	SubjectPurchase SubjectType = "purchase"
	SubjectSale     SubjectType = "sale"
)

// IsValid checks if the subject type is known
func (t SubjectType) IsValid() bool {
	return t == SubjectPurchase || t == SubjectSale
}

// String returns the string representation
func (t SubjectType) String() string {
	return string(t)
}

// Subject identifies the owning purchase or sale of a commission or installment.
// It is stored as a (type, id) pair.
type Subject struct {
	Type SubjectType
	ID   uuid.UUID
}

// PurchaseSubject references a purchase transaction
func PurchaseSubject(id uuid.UUID) Subject {
	return Subject{Type: SubjectPurchase, ID: id}
}

// SaleSubject references a sale transaction
func SaleSubject(id uuid.UUID) Subject {
	return Subject{Type: SubjectSale, ID: id}
}

// IsZero reports whether the subject is unset
func (s Subject) IsZero() bool {
	return s.Type == "" && s.ID == uuid.Nil
}

// Validate checks the subject has a known type and an id
func (s Subject) Validate() error {
	if !s.Type.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid subject type %q", s.Type)
	}
	if s.ID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "subject id cannot be empty")
	}
	return nil
}

func (s Subject) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}
