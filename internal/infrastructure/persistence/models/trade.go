package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/trade"
)

// BargainModel is the persistence model for the Bargain aggregate root.
type BargainModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Phone         string `gorm:"type:varchar(50)"`
	Email         string `gorm:"type:varchar(200)"`
	Address       string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BargainModel) TableName() string {
	return "bargains"
}

// ToDomain converts the persistence model to a domain Bargain.
func (m *BargainModel) ToDomain() *trade.Bargain {
	return &trade.Bargain{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		IsActive:          m.IsActive,
	}
}

// BargainModelFromDomain creates a persistence model from a domain Bargain.
func BargainModelFromDomain(b *trade.Bargain) *BargainModel {
	m := &BargainModel{
		Name:          b.Name,
		ContactPerson: b.ContactPerson,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		IsActive:      b.IsActive,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	BargainAggregateModel
	Name    string             `gorm:"type:varchar(200);not null"`
	Email   string             `gorm:"type:varchar(200)"`
	Phone   string             `gorm:"type:varchar(50)"`
	CNIC    string             `gorm:"column:cnic;type:varchar(20)"`
	Address string             `gorm:"type:text"`
	Type    trade.CustomerType `gorm:"column:customer_type;type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *trade.Customer {
	return &trade.Customer{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Name:                 m.Name,
		Email:                m.Email,
		Phone:                m.Phone,
		CNIC:                 m.CNIC,
		Address:              m.Address,
		Type:                 m.Type,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer.
func CustomerModelFromDomain(c *trade.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		CNIC:    c.CNIC,
		Address: c.Address,
		Type:    c.Type,
	}
	m.FromDomainBargainAggregateRoot(c.BargainAggregateRoot)
	return m
}

// VehicleModel is the persistence model for the Vehicle aggregate root.
type VehicleModel struct {
	BargainAggregateModel
	Make               string              `gorm:"type:varchar(100);not null"`
	Model              string              `gorm:"type:varchar(100);not null"`
	Year               int                 `gorm:"not null"`
	RegistrationNumber string              `gorm:"type:varchar(50);not null;index"`
	ChassisNumber      string              `gorm:"type:varchar(100)"`
	EngineNumber       string              `gorm:"type:varchar(100)"`
	Color              string              `gorm:"type:varchar(50)"`
	Mileage            int                 `gorm:"not null;default:0"`
	Status             trade.VehicleStatus `gorm:"type:varchar(20);not null;default:'available'"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a domain Vehicle.
func (m *VehicleModel) ToDomain() *trade.Vehicle {
	return &trade.Vehicle{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Make:                 m.Make,
		Model:                m.Model,
		Year:                 m.Year,
		RegistrationNumber:   m.RegistrationNumber,
		ChassisNumber:        m.ChassisNumber,
		EngineNumber:         m.EngineNumber,
		Color:                m.Color,
		Mileage:              m.Mileage,
		Status:               m.Status,
	}
}

// VehicleModelFromDomain creates a persistence model from a domain Vehicle.
func VehicleModelFromDomain(v *trade.Vehicle) *VehicleModel {
	m := &VehicleModel{
		Make:               v.Make,
		Model:              v.Model,
		Year:               v.Year,
		RegistrationNumber: v.RegistrationNumber,
		ChassisNumber:      v.ChassisNumber,
		EngineNumber:       v.EngineNumber,
		Color:              v.Color,
		Mileage:            v.Mileage,
		Status:             v.Status,
	}
	m.FromDomainBargainAggregateRoot(v.BargainAggregateRoot)
	return m
}

// TransactionModel is the persistence model for purchases and sales. Both
// kinds share one table, told apart by the kind column.
type TransactionModel struct {
	BargainAggregateModel
	Kind              trade.SubjectType       `gorm:"type:varchar(10);not null;index"`
	VehicleID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID               `gorm:"type:uuid;not null;index"`
	OriginalPrice     decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	BargainPrice      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	CommissionAmount  decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	NetAmount         decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	PaymentType       trade.PaymentType       `gorm:"type:varchar(20);not null"`
	InstallmentMonths int                     `gorm:"not null;default:0"`
	DownPayment       decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	TransactionDate   time.Time               `gorm:"type:date;not null;index"`
	Notes             string                  `gorm:"type:text"`
	Status            trade.TransactionStatus `gorm:"type:varchar(20);not null"`
	PaidAmount        decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	PendingAmount     decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	SettledAt         *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *trade.Transaction {
	return &trade.Transaction{
		BargainAggregateRoot: m.ToDomainBargainAggregateRoot(),
		Kind:                 m.Kind,
		VehicleID:            m.VehicleID,
		CustomerID:           m.CustomerID,
		OriginalPrice:        m.OriginalPrice,
		BargainPrice:         m.BargainPrice,
		CommissionAmount:     m.CommissionAmount,
		NetAmount:            m.NetAmount,
		PaymentType:          m.PaymentType,
		InstallmentMonths:    m.InstallmentMonths,
		DownPayment:          m.DownPayment,
		TransactionDate:      m.TransactionDate,
		Notes:                m.Notes,
		Status:               m.Status,
		PaidAmount:           m.PaidAmount,
		PendingAmount:        m.PendingAmount,
		SettledAt:            m.SettledAt,
	}
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction.
func TransactionModelFromDomain(t *trade.Transaction) *TransactionModel {
	m := &TransactionModel{
		Kind:              t.Kind,
		VehicleID:         t.VehicleID,
		CustomerID:        t.CustomerID,
		OriginalPrice:     t.OriginalPrice,
		BargainPrice:      t.BargainPrice,
		CommissionAmount:  t.CommissionAmount,
		NetAmount:         t.NetAmount,
		PaymentType:       t.PaymentType,
		InstallmentMonths: t.InstallmentMonths,
		DownPayment:       t.DownPayment,
		TransactionDate:   t.TransactionDate,
		Notes:             t.Notes,
		Status:            t.Status,
		PaidAmount:        t.PaidAmount,
		PendingAmount:     t.PendingAmount,
		SettledAt:         t.SettledAt,
	}
	m.FromDomainBargainAggregateRoot(t.BargainAggregateRoot)
	return m
}
