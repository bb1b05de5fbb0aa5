package credit

import "time"

// CreateCreditRequest is the payload for POST /credit.
type CreateCreditRequest struct {
	Counterparty       string    `json:"counterparty" validate:"required"`
	Kind               string    `json:"kind" validate:"required,oneof=LOAN SALE"`
	Description        string    `json:"description,omitempty"`
	Principal          float64   `json:"principal" validate:"gt=0"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	InterestEnabled    bool      `json:"interest_enabled"`
	MonthlyRatePercent float64   `json:"monthly_rate_percent" validate:"gte=0"`
}

// UpdateCreditRequest patches mutable fields; nil leaves a field untouched.
type UpdateCreditRequest struct {
	Counterparty       *string    `json:"counterparty,omitempty"`
	Kind               *string    `json:"kind,omitempty" validate:"omitempty,oneof=LOAN SALE"`
	Description        *string    `json:"description,omitempty"`
	Principal          *float64   `json:"principal,omitempty" validate:"omitempty,gt=0"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	InterestEnabled    *bool      `json:"interest_enabled,omitempty"`
	MonthlyRatePercent *float64   `json:"monthly_rate_percent,omitempty" validate:"omitempty,gte=0"`
}

// AddPaymentRequest appends one repayment.
type AddPaymentRequest struct {
	Date   time.Time `json:"date" validate:"required"`
	Amount float64   `json:"amount" validate:"gt=0"`
	Note   string    `json:"note,omitempty"`
}

// AccrualResponse pairs a record with its derived state.
type AccrualResponse struct {
	Record  *CreditRecord  `json:"record"`
	AsOf    time.Time      `json:"as_of"`
	Accrual *AccrualResult `json:"accrual"`
}
