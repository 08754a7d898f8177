package commission

import (
	"time"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

// Settings pairs the policy applied to purchases with the one applied to sales
type Settings struct {
	Purchase Policy `json:"purchase"`
	Sale     Policy `json:"sale"`
}

// Validate checks both policies
func (s Settings) Validate() error {
	if err := s.Purchase.Validate(); err != nil {
		return err
	}
	return s.Sale.Validate()
}

// PolicyFor returns the policy for a transaction kind
func (s Settings) PolicyFor(kind trade.SubjectType) (Policy, error) {
	switch kind {
	case trade.SubjectPurchase:
		return s.Purchase, nil
	case trade.SubjectSale:
		return s.Sale, nil
	}
	return Policy{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid transaction kind %q", kind)
}

// GlobalSettings is a bargain's default commission settings
type GlobalSettings struct {
	shared.BargainAggregateRoot
	Settings
}

// NewGlobalSettings creates the default settings of a bargain
func NewGlobalSettings(bargainID uuid.UUID, settings Settings) (*GlobalSettings, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &GlobalSettings{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Settings:             settings,
	}, nil
}

// Update replaces the settings
func (g *GlobalSettings) Update(settings Settings, at time.Time) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	g.Settings = settings
	g.Touch(at)
	g.IncrementVersion()
	return nil
}

// Override is a bargain-specific rate that supersedes the global settings while active
type Override struct {
	shared.BargainAggregateRoot
	Settings
	Active bool
	Reason string
}

// NewOverride creates an active override
func NewOverride(bargainID uuid.UUID, settings Settings, reason string) (*Override, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Override{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Settings:             settings,
		Active:               true,
		Reason:               reason,
	}, nil
}

// Replace swaps the override rates and re-activates it
func (o *Override) Replace(settings Settings, reason string, at time.Time) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	o.Settings = settings
	o.Reason = reason
	o.Active = true
	o.Touch(at)
	o.IncrementVersion()
	return nil
}

// Deactivate stops the override from applying
func (o *Override) Deactivate(at time.Time) {
	if !o.Active {
		return
	}
	o.Active = false
	o.Touch(at)
	o.IncrementVersion()
}

// Source names where a resolved policy came from
type Source string

const (
	SourceOverride Source = "override"
	SourceGlobal   Source = "global"
	SourceSystem   Source = "system"
)

// Resolved is a policy together with its origin
type Resolved struct {
	Policy Policy `json:"policy"`
	Source Source `json:"source"`
}

// Snapshot is the effective settings of a bargain and where they came from
type Snapshot struct {
	Settings Settings `json:"settings"`
	Source   Source   `json:"source"`
}

// Effective picks the settings that apply: an active override wins over the
// bargain's global settings, which win over the system default. Nil override
// or global means "not configured".
func Effective(override *Override, global *GlobalSettings, system Settings) Snapshot {
	switch {
	case override != nil && override.Active:
		return Snapshot{Settings: override.Settings, Source: SourceOverride}
	case global != nil:
		return Snapshot{Settings: global.Settings, Source: SourceGlobal}
	}
	return Snapshot{Settings: system, Source: SourceSystem}
}

// Resolve returns the validated policy for a transaction kind
func (s Snapshot) Resolve(kind trade.SubjectType) (Resolved, error) {
	policy, err := s.Settings.PolicyFor(kind)
	if err != nil {
		return Resolved{}, err
	}
	if err := policy.Validate(); err != nil {
		return Resolved{}, err
	}
	return Resolved{Policy: policy, Source: s.Source}, nil
}

// Resolve picks the policy for a transaction kind from the configured sources
func Resolve(kind trade.SubjectType, override *Override, global *GlobalSettings, system Settings) (Resolved, error) {
	return Effective(override, global, system).Resolve(kind)
}
