package trade

// PaymentType is how a purchase or sale is settled
type PaymentType string

const (
	PaymentTypeCash        PaymentType = "cash"
	PaymentTypeInstallment PaymentType = "installment"
)

// IsValid checks if the payment type is valid
func (p PaymentType) IsValid() bool {
	return p == PaymentTypeCash || p == PaymentTypeInstallment
}

// String returns the string representation
func (p PaymentType) String() string {
	return string(p)
}

// TransactionStatus is the settlement state of a purchase or sale
type TransactionStatus string

const (
	// TransactionStatusActive means installments are still outstanding
	TransactionStatusActive TransactionStatus = "active"
	// TransactionStatusCompleted means the transaction is fully settled
	TransactionStatusCompleted TransactionStatus = "completed"
)

// IsValid checks if the status is valid
func (s TransactionStatus) IsValid() bool {
	return s == TransactionStatusActive || s == TransactionStatusCompleted
}

// String returns the string representation
func (s TransactionStatus) String() string {
	return string(s)
}

// CustomerType is the trading role a customer may take
type CustomerType string

const (
	CustomerTypeBuyer  CustomerType = "buyer"
	CustomerTypeSeller CustomerType = "seller"
	CustomerTypeBoth   CustomerType = "both"
)

// IsValid checks if the customer type is valid
func (c CustomerType) IsValid() bool {
	switch c {
	case CustomerTypeBuyer, CustomerTypeSeller, CustomerTypeBoth:
		return true
	}
	return false
}

// CanBuy returns true if the customer may be the counterparty of a sale
func (c CustomerType) CanBuy() bool {
	return c == CustomerTypeBuyer || c == CustomerTypeBoth
}

// CanSell returns true if the customer may be the counterparty of a purchase
func (c CustomerType) CanSell() bool {
	return c == CustomerTypeSeller || c == CustomerTypeBoth
}

// String returns the string representation
func (c CustomerType) String() string {
	return string(c)
}

// VehicleStatus is the stock state of a vehicle
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusSold        VehicleStatus = "sold"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusReserved    VehicleStatus = "reserved"
)

var vehicleTransitions = map[VehicleStatus][]VehicleStatus{
	VehicleStatusAvailable:   {VehicleStatusSold, VehicleStatusMaintenance, VehicleStatusReserved},
	VehicleStatusReserved:    {VehicleStatusSold, VehicleStatusAvailable},
	VehicleStatusMaintenance: {VehicleStatusAvailable},
	// A sold vehicle comes back into stock through a new purchase
	VehicleStatusSold: {VehicleStatusAvailable},
}

// IsValid checks if the vehicle status is valid
func (s VehicleStatus) IsValid() bool {
	_, ok := vehicleTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status may move to next
func (s VehicleStatus) CanTransitionTo(next VehicleStatus) bool {
	for _, allowed := range vehicleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsSellable returns true if a sale may be recorded against the vehicle
func (s VehicleStatus) IsSellable() bool {
	return s.CanTransitionTo(VehicleStatusSold)
}

// String returns the string representation
func (s VehicleStatus) String() string {
	return string(s)
}
