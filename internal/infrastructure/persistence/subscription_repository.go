package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

// GormSubscriptionRepository implements subscription.Repository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestForBargain returns the subscription with the latest end date
func (r *GormSubscriptionRepository) FindLatestForBargain(ctx context.Context, bargainID uuid.UUID) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("bargain_id = ?", bargainID).
		Order("end_date DESC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns subscriptions in a stable order for batch processing
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, offset, limit int) ([]subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	subs := make([]subscription.Subscription, len(rows))
	for i, model := range rows {
		subs[i] = *model.ToDomain()
	}
	return subs, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	return r.db.WithContext(ctx).Save(models.SubscriptionModelFromDomain(s)).Error
}

// SaveWithLock updates a subscription with an optimistic version check
func (r *GormSubscriptionRepository) SaveWithLock(ctx context.Context, s *subscription.Subscription) error {
	model := models.SubscriptionModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return versionConflict("subscription")
	}
	return nil
}

var _ subscription.Repository = (*GormSubscriptionRepository)(nil)
