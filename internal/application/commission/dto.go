package commission

import (
	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/commission"
)

// PolicyInput is a commission policy in its textual form
type PolicyInput struct {
	Kind  string `json:"kind" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// SettingsRequest sets the purchase and sale policies of a bargain
type SettingsRequest struct {
	Purchase PolicyInput `json:"purchase"`
	Sale     PolicyInput `json:"sale"`
}

// OverrideRequest sets a bargain-specific override
type OverrideRequest struct {
	Purchase PolicyInput `json:"purchase"`
	Sale     PolicyInput `json:"sale"`
	Reason   string      `json:"reason" validate:"max=500"`
}

// SettingsResponse is the stored or effective settings of a bargain
type SettingsResponse struct {
	BargainID uuid.UUID         `json:"bargain_id"`
	Purchase  commission.Policy `json:"purchase"`
	Sale      commission.Policy `json:"sale"`
	Source    commission.Source `json:"source"`
	Active    bool              `json:"active"`
	Reason    string            `json:"reason,omitempty"`
}

// ParseSettings builds validated settings from their textual form, as read
// from configuration.
func ParseSettings(purchaseKind, purchaseValue, saleKind, saleValue string) (commission.Settings, error) {
	purchase, err := commission.ParsePolicy(purchaseKind, purchaseValue)
	if err != nil {
		return commission.Settings{}, err
	}
	sale, err := commission.ParsePolicy(saleKind, saleValue)
	if err != nil {
		return commission.Settings{}, err
	}
	return commission.Settings{Purchase: purchase, Sale: sale}, nil
}

func (r SettingsRequest) toSettings() (commission.Settings, error) {
	return ParseSettings(r.Purchase.Kind, r.Purchase.Value, r.Sale.Kind, r.Sale.Value)
}

func (r OverrideRequest) toSettings() (commission.Settings, error) {
	return ParseSettings(r.Purchase.Kind, r.Purchase.Value, r.Sale.Kind, r.Sale.Value)
}

// ToSettingsResponse converts an effective snapshot to a response
func ToSettingsResponse(bargainID uuid.UUID, snapshot commission.Snapshot) SettingsResponse {
	return SettingsResponse{
		BargainID: bargainID,
		Purchase:  snapshot.Settings.Purchase,
		Sale:      snapshot.Settings.Sale,
		Source:    snapshot.Source,
		Active:    true,
	}
}

func toOverrideResponse(o *commission.Override) SettingsResponse {
	return SettingsResponse{
		BargainID: o.BargainID,
		Purchase:  o.Purchase,
		Sale:      o.Sale,
		Source:    commission.SourceOverride,
		Active:    o.Active,
		Reason:    o.Reason,
	}
}
