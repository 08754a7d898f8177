package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

func versionConflict(entity string) error {
	return shared.NewDomainErrorf(shared.CodeConcurrencyConflict, "the %s record has been modified by another transaction", entity)
}

// GormBargainRepository implements trade.BargainRepository using GORM
type GormBargainRepository struct {
	db *gorm.DB
}

// NewGormBargainRepository creates a new GormBargainRepository
func NewGormBargainRepository(db *gorm.DB) *GormBargainRepository {
	return &GormBargainRepository{db: db}
}

// FindByID finds a bargain by its ID
func (r *GormBargainRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Bargain, error) {
	var model models.BargainModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a bargain
func (r *GormBargainRepository) Save(ctx context.Context, bargain *trade.Bargain) error {
	return r.db.WithContext(ctx).Save(models.BargainModelFromDomain(bargain)).Error
}

// GormCustomerRepository implements trade.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForBargain finds a customer by ID within a bargain
func (r *GormCustomerRepository) FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*trade.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("bargain_id = ? AND id = ?", bargainID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *trade.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// GormVehicleRepository implements trade.VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByIDForBargain finds a vehicle by ID within a bargain
func (r *GormVehicleRepository) FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*trade.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).
		Where("bargain_id = ? AND id = ?", bargainID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRegistration finds a vehicle by its registration number within a bargain
func (r *GormVehicleRepository) FindByRegistration(ctx context.Context, bargainID uuid.UUID, registrationNumber string) (*trade.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).
		Where("bargain_id = ? AND registration_number = ?", bargainID, strings.ToUpper(strings.TrimSpace(registrationNumber))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *trade.Vehicle) error {
	return r.db.WithContext(ctx).Save(models.VehicleModelFromDomain(vehicle)).Error
}

// SaveWithLock saves a vehicle whose version was incremented in memory,
// failing if the stored version is no longer the one it was loaded at
func (r *GormVehicleRepository) SaveWithLock(ctx context.Context, vehicle *trade.Vehicle) error {
	model := models.VehicleModelFromDomain(vehicle)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", vehicle.ID, vehicle.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return versionConflict("vehicle")
	}
	return nil
}

// GormTransactionRepository implements trade.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForBargain finds a transaction by ID within a bargain
func (r *GormTransactionRepository) FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*trade.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("bargain_id = ? AND id = ?", bargainID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForBargain lists transactions of one kind; an empty kind lists both
func (r *GormTransactionRepository) FindAllForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, filter shared.Filter) ([]trade.Transaction, error) {
	var rows []models.TransactionModel
	query := r.scoped(ctx, bargainID, kind, filter).
		Scopes(Paginate(filter, TransactionSortFields, "transaction_date"))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	transactions := make([]trade.Transaction, len(rows))
	for i, model := range rows {
		transactions[i] = *model.ToDomain()
	}
	return transactions, nil
}

// CountForBargain counts the transactions FindAllForBargain would list across all pages
func (r *GormTransactionRepository) CountForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, filter shared.Filter) (int64, error) {
	var count int64
	err := r.scoped(ctx, bargainID, kind, filter).Count(&count).Error
	return count, err
}

// scoped applies the bargain, kind, status and payment_type filters
func (r *GormTransactionRepository) scoped(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Scopes(ForBargain(bargainID))
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if paymentType, ok := filter.Filters["payment_type"]; ok {
		query = query.Where("payment_type = ?", paymentType)
	}
	return query
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *trade.Transaction) error {
	return r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(transaction)).Error
}

// SaveWithLock saves a transaction with an optimistic version check
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, transaction *trade.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", transaction.ID, transaction.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return versionConflict("transaction")
	}
	return nil
}

var (
	_ trade.BargainRepository     = (*GormBargainRepository)(nil)
	_ trade.CustomerRepository    = (*GormCustomerRepository)(nil)
	_ trade.VehicleRepository     = (*GormVehicleRepository)(nil)
	_ trade.TransactionRepository = (*GormTransactionRepository)(nil)
)
