package commission

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

// SettingsService manages global commission settings and overrides, and
// resolves the policy that applies to a bargain's transactions.
type SettingsService struct {
	settingsRepo commission.SettingsRepository
	cache        commission.SettingsCache
	system       commission.Settings
	clock        appshared.Clock
}

// NewSettingsService creates a new SettingsService. system applies to bargains
// with neither an active override nor their own settings.
func NewSettingsService(settingsRepo commission.SettingsRepository, system commission.Settings) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		system:       system,
		clock:        appshared.NewClock(nil),
	}
}

// SetCache sets the cache of effective settings
func (s *SettingsService) SetCache(cache commission.SettingsCache) {
	s.cache = cache
}

// SetClock sets the clock used for timestamps
func (s *SettingsService) SetClock(clock appshared.Clock) {
	s.clock = clock
}

// SetGlobalPolicy creates or replaces the bargain's own settings
func (s *SettingsService) SetGlobalPolicy(ctx context.Context, bargainID uuid.UUID, req SettingsRequest) (*SettingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "set_global_policy",
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	settings, err := req.toSettings()
	if err != nil {
		return nil, err
	}

	global, err := s.settingsRepo.FindGlobal(ctx, bargainID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if global == nil {
		global, err = commission.NewGlobalSettings(bargainID, settings)
	} else {
		err = global.Update(settings, s.clock.Now())
	}
	if err != nil {
		return nil, err
	}

	if err := s.settingsRepo.SaveGlobal(ctx, global); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidate(ctx, bargainID)

	logger.L(ctx).Info("global commission settings saved",
		zap.String("bargain_id", bargainID.String()),
		zap.String("purchase", settings.Purchase.String()),
		zap.String("sale", settings.Sale.String()))

	response := ToSettingsResponse(bargainID, commission.Snapshot{Settings: global.Settings, Source: commission.SourceGlobal})
	return &response, nil
}

// SetOverride creates or replaces the bargain's override and activates it
func (s *SettingsService) SetOverride(ctx context.Context, bargainID uuid.UUID, req OverrideRequest) (*SettingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "set_override",
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	settings, err := req.toSettings()
	if err != nil {
		return nil, err
	}

	override, err := s.settingsRepo.FindOverride(ctx, bargainID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if override == nil {
		override, err = commission.NewOverride(bargainID, settings, req.Reason)
	} else {
		err = override.Replace(settings, req.Reason, s.clock.Now())
	}
	if err != nil {
		return nil, err
	}

	if err := s.settingsRepo.SaveOverride(ctx, override); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidate(ctx, bargainID)

	logger.L(ctx).Info("commission override saved",
		zap.String("bargain_id", bargainID.String()),
		zap.String("reason", override.Reason))

	response := toOverrideResponse(override)
	return &response, nil
}

// DeactivateOverride stops the bargain's override from applying
func (s *SettingsService) DeactivateOverride(ctx context.Context, bargainID uuid.UUID) (*SettingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "deactivate_override",
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	override, err := s.settingsRepo.FindOverride(ctx, bargainID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if override == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "bargain has no commission override")
	}
	if !override.Active {
		response := toOverrideResponse(override)
		return &response, nil
	}

	override.Deactivate(s.clock.Now())
	if err := s.settingsRepo.SaveOverride(ctx, override); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidate(ctx, bargainID)

	logger.L(ctx).Info("commission override deactivated", zap.String("bargain_id", bargainID.String()))

	response := toOverrideResponse(override)
	return &response, nil
}

// Effective returns the settings that apply to the bargain and their source.
// Results are served from the cache when one is set.
func (s *SettingsService) Effective(ctx context.Context, bargainID uuid.UUID) (commission.Snapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, bargainID)
		if err != nil {
			logger.L(ctx).Warn("commission settings cache read failed",
				zap.String("bargain_id", bargainID.String()), zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	override, err := s.settingsRepo.FindOverride(ctx, bargainID)
	if err != nil {
		return commission.Snapshot{}, err
	}
	global, err := s.settingsRepo.FindGlobal(ctx, bargainID)
	if err != nil {
		return commission.Snapshot{}, err
	}
	snapshot := commission.Effective(override, global, s.system)

	if s.cache != nil {
		if err := s.cache.Set(ctx, bargainID, &snapshot); err != nil {
			logger.L(ctx).Warn("commission settings cache write failed",
				zap.String("bargain_id", bargainID.String()), zap.Error(err))
		}
	}
	return snapshot, nil
}

// Resolve returns the policy for a transaction kind of the bargain
func (s *SettingsService) Resolve(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType) (commission.Resolved, error) {
	snapshot, err := s.Effective(ctx, bargainID)
	if err != nil {
		return commission.Resolved{}, err
	}
	return snapshot.Resolve(kind)
}

// GetSettings returns the effective settings of the bargain
func (s *SettingsService) GetSettings(ctx context.Context, bargainID uuid.UUID) (*SettingsResponse, error) {
	snapshot, err := s.Effective(ctx, bargainID)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(bargainID, snapshot)
	return &response, nil
}

func (s *SettingsService) invalidate(ctx context.Context, bargainID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, bargainID); err != nil {
		logger.L(ctx).Warn("commission settings cache invalidation failed",
			zap.String("bargain_id", bargainID.String()), zap.Error(err))
	}
}
