package participants

import "time"

// Participant is a payout target eligible for settlement distributions.
// Settlements store a frozen snapshot of id + percentage, so editing or
// deleting a participant never alters a past settlement.
type Participant struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	DefaultPercent *float64  `json:"default_percent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SaveParticipantRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Active         *bool    `json:"active,omitempty"`
	DefaultPercent *float64 `json:"default_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}
