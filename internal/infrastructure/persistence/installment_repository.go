package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

// GormInstallmentRepository implements installment.Repository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySubject returns a transaction's installments ordered by sequence number
func (r *GormInstallmentRepository) FindBySubject(ctx context.Context, subject trade.Subject) ([]installment.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subject.Type, subject.ID).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInstallments(rows), nil
}

// FindOverdue returns unpaid installments due before asOf's calendar date.
// The stored status is not trusted; overdue is decided from the due date and
// the paid amount. uuid.Nil sweeps every bargain.
func (r *GormInstallmentRepository) FindOverdue(ctx context.Context, bargainID uuid.UUID, asOf time.Time) ([]installment.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Scopes(ForBargain(bargainID)).
		Where("due_date < ? AND paid_amount < amount", calendar.Civil(asOf)).
		Order("due_date ASC, sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInstallments(rows), nil
}

// SaveAll inserts a newly scheduled plan
func (r *GormInstallmentRepository) SaveAll(ctx context.Context, installments []*installment.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	rows := make([]*models.InstallmentModel, len(installments))
	for i, inst := range installments {
		rows[i] = models.InstallmentModelFromDomain(inst)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// SaveWithLock updates an installment with an optimistic version check
func (r *GormInstallmentRepository) SaveWithLock(ctx context.Context, inst *installment.Installment) error {
	model := models.InstallmentModelFromDomain(inst)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", inst.ID, inst.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return versionConflict("installment")
	}
	return nil
}

func toInstallments(rows []models.InstallmentModel) []installment.Installment {
	installments := make([]installment.Installment, len(rows))
	for i, model := range rows {
		installments[i] = *model.ToDomain()
	}
	return installments
}

var _ installment.Repository = (*GormInstallmentRepository)(nil)
