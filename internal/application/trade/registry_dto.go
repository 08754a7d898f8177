package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/trade"
)

// RegisterBargainRequest opens a new dealership
type RegisterBargainRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"max=50"`
	Email         string `json:"email" validate:"omitempty,email,max=100"`
	Address       string `json:"address" validate:"max=500"`
}

// RegisterCustomerRequest adds a buyer or seller to a bargain
type RegisterCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email,max=100"`
	CNIC    string `json:"cnic" validate:"max=20"`
	Address string `json:"address" validate:"max=500"`
	Type    string `json:"type" validate:"required,oneof=buyer seller both"`
}

// RegisterVehicleRequest puts a vehicle into a bargain's stock
type RegisterVehicleRequest struct {
	Make               string `json:"make" validate:"required,max=100"`
	Model              string `json:"model" validate:"required,max=100"`
	Year               int    `json:"year" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=50"`
	ChassisNumber      string `json:"chassis_number" validate:"max=100"`
	EngineNumber       string `json:"engine_number" validate:"max=100"`
	Color              string `json:"color" validate:"max=50"`
	Mileage            int    `json:"mileage" validate:"gte=0"`
}

// ChangeVehicleStatusRequest moves a vehicle between stock states
type ChangeVehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available sold maintenance reserved"`
}

// BargainResponse represents a bargain in API responses
type BargainResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID          `json:"id"`
	BargainID uuid.UUID          `json:"bargain_id"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone,omitempty"`
	Email     string             `json:"email,omitempty"`
	CNIC      string             `json:"cnic,omitempty"`
	Address   string             `json:"address,omitempty"`
	Type      trade.CustomerType `json:"type"`
	CreatedAt time.Time          `json:"created_at"`
}

// VehicleResponse represents a vehicle in API responses
type VehicleResponse struct {
	ID                 uuid.UUID           `json:"id"`
	BargainID          uuid.UUID           `json:"bargain_id"`
	Make               string              `json:"make"`
	Model              string              `json:"model"`
	Year               int                 `json:"year"`
	RegistrationNumber string              `json:"registration_number"`
	ChassisNumber      string              `json:"chassis_number,omitempty"`
	EngineNumber       string              `json:"engine_number,omitempty"`
	Color              string              `json:"color,omitempty"`
	Mileage            int                 `json:"mileage"`
	Status             trade.VehicleStatus `json:"status"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// ToBargainResponse converts a domain Bargain to BargainResponse
func ToBargainResponse(b *trade.Bargain) BargainResponse {
	return BargainResponse{
		ID:            b.ID,
		Name:          b.Name,
		ContactPerson: b.ContactPerson,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		IsActive:      b.IsActive,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *trade.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		BargainID: c.BargainID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		CNIC:      c.CNIC,
		Address:   c.Address,
		Type:      c.Type,
		CreatedAt: c.CreatedAt,
	}
}

// ToVehicleResponse converts a domain Vehicle to VehicleResponse
func ToVehicleResponse(v *trade.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                 v.ID,
		BargainID:          v.BargainID,
		Make:               v.Make,
		Model:              v.Model,
		Year:               v.Year,
		RegistrationNumber: v.RegistrationNumber,
		ChassisNumber:      v.ChassisNumber,
		EngineNumber:       v.EngineNumber,
		Color:              v.Color,
		Mileage:            v.Mileage,
		Status:             v.Status,
		UpdatedAt:          v.UpdatedAt,
		Version:            v.Version,
	}
}
