package commission

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

// Repository persists commission records
type Repository interface {
	Save(ctx context.Context, commission *Commission) error
	FindBySubject(ctx context.Context, subject trade.Subject) (*Commission, error)
	FindAllForBargain(ctx context.Context, bargainID uuid.UUID, filter shared.Filter) ([]Commission, error)
	// SumForBargain totals commission earned on one kind of transaction; an empty kind sums both
	SumForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType) (decimal.Decimal, error)
}

// SettingsRepository persists global settings and overrides.
// The Find methods return nil, nil when nothing is configured.
type SettingsRepository interface {
	FindGlobal(ctx context.Context, bargainID uuid.UUID) (*GlobalSettings, error)
	SaveGlobal(ctx context.Context, settings *GlobalSettings) error
	FindOverride(ctx context.Context, bargainID uuid.UUID) (*Override, error)
	SaveOverride(ctx context.Context, override *Override) error
}

// SettingsCache holds the effective settings per bargain.
// Get returns nil, nil on a miss.
type SettingsCache interface {
	Get(ctx context.Context, bargainID uuid.UUID) (*Snapshot, error)
	Set(ctx context.Context, bargainID uuid.UUID, snapshot *Snapshot) error
	Invalidate(ctx context.Context, bargainID uuid.UUID) error
}
