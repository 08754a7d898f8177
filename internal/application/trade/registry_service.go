package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

// RegistryService keeps the bargains and the customers and vehicles they
// trade with
type RegistryService struct {
	scope       appshared.TransactionScope
	bargainRepo trade.BargainRepository
	clock       appshared.Clock
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(scope appshared.TransactionScope, bargainRepo trade.BargainRepository) *RegistryService {
	return &RegistryService{
		scope:       scope,
		bargainRepo: bargainRepo,
		clock:       appshared.NewClock(nil),
	}
}

// SetClock sets the clock used for timestamps
func (s *RegistryService) SetClock(clock appshared.Clock) {
	s.clock = clock
}

// RegisterBargain opens a new, active bargain
func (s *RegistryService) RegisterBargain(ctx context.Context, req RegisterBargainRequest) (*BargainResponse, error) {
	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	bargain, err := trade.NewBargain(req.Name, req.ContactPerson, req.Phone)
	if err != nil {
		return nil, err
	}
	bargain.Email = strings.TrimSpace(req.Email)
	bargain.Address = strings.TrimSpace(req.Address)

	if err := s.bargainRepo.Save(ctx, bargain); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("bargain registered",
		zap.String("bargain_id", bargain.ID.String()),
		zap.String("name", bargain.Name))

	resp := ToBargainResponse(bargain)
	return &resp, nil
}

// SetBargainActive activates or deactivates a bargain. An inactive bargain
// cannot register customers or vehicles.
func (s *RegistryService) SetBargainActive(ctx context.Context, bargainID uuid.UUID, active bool) (*BargainResponse, error) {
	bargain, err := s.bargainRepo.FindByID(ctx, bargainID)
	if err != nil {
		return nil, err
	}
	version := bargain.Version
	if active {
		bargain.Activate(s.clock.LocalNow())
	} else {
		bargain.Deactivate(s.clock.LocalNow())
	}
	if bargain.Version != version {
		if err := s.bargainRepo.Save(ctx, bargain); err != nil {
			return nil, err
		}
		logger.L(ctx).Info("bargain activation changed",
			zap.String("bargain_id", bargainID.String()),
			zap.Bool("active", active))
	}
	resp := ToBargainResponse(bargain)
	return &resp, nil
}

// RegisterCustomer adds a buyer or seller to an active bargain
func (s *RegistryService) RegisterCustomer(ctx context.Context, bargainID uuid.UUID, req RegisterCustomerRequest) (*CustomerResponse, error) {
	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, bargainID); err != nil {
		return nil, err
	}
	customer, err := trade.NewCustomer(bargainID, req.Name, req.Phone, trade.CustomerType(req.Type))
	if err != nil {
		return nil, err
	}
	customer.Email = strings.TrimSpace(req.Email)
	customer.CNIC = strings.TrimSpace(req.CNIC)
	customer.Address = strings.TrimSpace(req.Address)

	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// RegisterVehicle puts a vehicle into an active bargain's stock. Registration
// numbers are unique within a bargain.
func (s *RegistryService) RegisterVehicle(ctx context.Context, bargainID uuid.UUID, req RegisterVehicleRequest) (*VehicleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "register_vehicle",
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, bargainID); err != nil {
		return nil, err
	}
	vehicle, err := trade.NewVehicle(bargainID, req.Make, req.Model, req.Year, req.RegistrationNumber)
	if err != nil {
		return nil, err
	}
	vehicle.ChassisNumber = strings.TrimSpace(req.ChassisNumber)
	vehicle.EngineNumber = strings.TrimSpace(req.EngineNumber)
	vehicle.Color = strings.TrimSpace(req.Color)
	vehicle.Mileage = req.Mileage

	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		existing, err := repos.Vehicles().FindByRegistration(ctx, bargainID, vehicle.RegistrationNumber)
		switch {
		case err == nil:
			return shared.NewDomainErrorf(shared.CodeAlreadyExists,
				"vehicle %s is already registered as %s", existing.RegistrationNumber, existing.ID)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		return repos.Vehicles().Save(ctx, vehicle)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("vehicle registered",
		zap.String("bargain_id", bargainID.String()),
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("registration_number", vehicle.RegistrationNumber))
	resp := ToVehicleResponse(vehicle)
	return &resp, nil
}

// ChangeVehicleStatus moves a vehicle to another stock state. Sales and
// purchases move vehicles on their own; this covers reservations and
// maintenance.
func (s *RegistryService) ChangeVehicleStatus(ctx context.Context, bargainID, vehicleID uuid.UUID, req ChangeVehicleStatusRequest) (*VehicleResponse, error) {
	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	var vehicle *trade.Vehicle
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		found, err := repos.Vehicles().FindByIDForBargain(ctx, bargainID, vehicleID)
		if err != nil {
			return err
		}
		if err := found.TransitionTo(trade.VehicleStatus(req.Status), s.clock.LocalNow()); err != nil {
			return err
		}
		vehicle = found
		return repos.Vehicles().SaveWithLock(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("vehicle status changed",
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("status", string(vehicle.Status)))
	resp := ToVehicleResponse(vehicle)
	return &resp, nil
}

func (s *RegistryService) requireActive(ctx context.Context, bargainID uuid.UUID) error {
	bargain, err := s.bargainRepo.FindByID(ctx, bargainID)
	if err != nil {
		return err
	}
	if !bargain.IsActive {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "bargain %s is inactive", bargain.Name)
	}
	return nil
}
