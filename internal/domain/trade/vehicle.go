package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
)

// Vehicle is a unit of stock held by a bargain
type Vehicle struct {
	shared.BargainAggregateRoot
	Make               string
	Model              string
	Year               int
	RegistrationNumber string
	ChassisNumber      string
	EngineNumber       string
	Color              string
	Mileage            int
	Status             VehicleStatus
}

// NewVehicle creates an available vehicle
func NewVehicle(bargainID uuid.UUID, manufacturer, model string, year int, registrationNumber string) (*Vehicle, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	manufacturer = strings.TrimSpace(manufacturer)
	model = strings.TrimSpace(model)
	if manufacturer == "" || model == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "vehicle make and model are required")
	}
	if year < 1900 || year > 2100 {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid vehicle year %d", year)
	}
	registrationNumber = strings.ToUpper(strings.TrimSpace(registrationNumber))
	if registrationNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "registration number is required")
	}
	return &Vehicle{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Make:                 manufacturer,
		Model:                model,
		Year:                 year,
		RegistrationNumber:   registrationNumber,
		Status:               VehicleStatusAvailable,
	}, nil
}

// TransitionTo moves the vehicle to the next stock state
func (v *Vehicle) TransitionTo(next VehicleStatus, at time.Time) error {
	if !next.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid vehicle status %q", next)
	}
	if !v.Status.CanTransitionTo(next) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "vehicle %s cannot move from %s to %s", v.RegistrationNumber, v.Status, next)
	}
	v.Status = next
	v.Touch(at)
	v.IncrementVersion()
	return nil
}

// MarkSold records the sale of the vehicle
func (v *Vehicle) MarkSold(at time.Time) error {
	return v.TransitionTo(VehicleStatusSold, at)
}

// Restock brings a vehicle back into stock through a purchase. A vehicle that
// is already available stays as it is.
func (v *Vehicle) Restock(at time.Time) error {
	if v.Status == VehicleStatusAvailable {
		return nil
	}
	return v.TransitionTo(VehicleStatusAvailable, at)
}
