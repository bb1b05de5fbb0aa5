package companies

import "time"

// Company is a tenant. Every sale row, settlement, credit record and voucher
// is scoped to exactly one company; the active scope travels per request.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveCompanyRequest creates or renames a company.
type SaveCompanyRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active,omitempty"`
}
