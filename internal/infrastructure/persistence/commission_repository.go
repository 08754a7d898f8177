package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

// GormCommissionRepository implements commission.Repository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// Save inserts a commission record. Records are written once per transaction.
func (r *GormCommissionRepository) Save(ctx context.Context, c *commission.Commission) error {
	return r.db.WithContext(ctx).Create(models.CommissionModelFromDomain(c)).Error
}

// FindBySubject finds the commission recorded against a purchase or sale
func (r *GormCommissionRepository) FindBySubject(ctx context.Context, subject trade.Subject) (*commission.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subject.Type, subject.ID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForBargain lists a bargain's commission records
func (r *GormCommissionRepository) FindAllForBargain(ctx context.Context, bargainID uuid.UUID, filter shared.Filter) ([]commission.Commission, error) {
	var rows []models.CommissionModel
	query := r.db.WithContext(ctx).
		Scopes(ForBargain(bargainID), Paginate(filter, CommissionSortFields, "transaction_date"))
	if kind, ok := filter.Filters["subject_type"]; ok {
		query = query.Where("subject_type = ?", kind)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]commission.Commission, len(rows))
	for i, model := range rows {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// SumForBargain totals commission earned on one kind of transaction; an empty kind sums both
func (r *GormCommissionRepository) SumForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Scopes(ForBargain(bargainID))
	if kind != "" {
		query = query.Where("subject_type = ?", kind)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GormCommissionSettingsRepository implements commission.SettingsRepository using GORM
type GormCommissionSettingsRepository struct {
	db *gorm.DB
}

// NewGormCommissionSettingsRepository creates a new GormCommissionSettingsRepository
func NewGormCommissionSettingsRepository(db *gorm.DB) *GormCommissionSettingsRepository {
	return &GormCommissionSettingsRepository{db: db}
}

// FindGlobal returns the bargain's settings, or nil when none are stored
func (r *GormCommissionSettingsRepository) FindGlobal(ctx context.Context, bargainID uuid.UUID) (*commission.GlobalSettings, error) {
	var model models.CommissionSettingsModel
	if err := r.db.WithContext(ctx).Where("bargain_id = ?", bargainID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveGlobal creates or updates the bargain's settings row
func (r *GormCommissionSettingsRepository) SaveGlobal(ctx context.Context, settings *commission.GlobalSettings) error {
	return r.db.WithContext(ctx).Save(models.CommissionSettingsModelFromDomain(settings)).Error
}

// FindOverride returns the bargain's override, or nil when none is stored
func (r *GormCommissionSettingsRepository) FindOverride(ctx context.Context, bargainID uuid.UUID) (*commission.Override, error) {
	var model models.CommissionOverrideModel
	if err := r.db.WithContext(ctx).Where("bargain_id = ?", bargainID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveOverride creates or updates the bargain's override row
func (r *GormCommissionSettingsRepository) SaveOverride(ctx context.Context, override *commission.Override) error {
	return r.db.WithContext(ctx).Save(models.CommissionOverrideModelFromDomain(override)).Error
}

var (
	_ commission.Repository         = (*GormCommissionRepository)(nil)
	_ commission.SettingsRepository = (*GormCommissionSettingsRepository)(nil)
)
