package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save inserts a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error
}

// FindByTarget returns the payments of one target ordered by payment date
func (r *GormPaymentRepository) FindByTarget(ctx context.Context, target payment.Target) ([]payment.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Order("payment_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]payment.Payment, len(rows))
	for i, model := range rows {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
