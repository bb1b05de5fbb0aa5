package rates

import "time"

// PresetKind tells which sale-row field a preset feeds.
type PresetKind string

const (
	KindCapitalFee PresetKind = "CAPITAL_FEE"
	KindTax        PresetKind = "TAX"
)

// Preset is a named percentage used to pre-fill sale-row entry.
type Preset struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	Name      string     `json:"name"`
	Kind      PresetKind `json:"kind"`
	Percent   float64    `json:"percent"`
	CreatedAt time.Time  `json:"created_at"`
}

// SavePresetRequest creates or edits a preset.
type SavePresetRequest struct {
	Name    string  `json:"name" validate:"required"`
	Kind    string  `json:"kind" validate:"required,oneof=CAPITAL_FEE TAX"`
	Percent float64 `json:"percent" validate:"gte=0"`
}
