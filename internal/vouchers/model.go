package vouchers

import "time"

// MovementKind tells whether a movement grows or consumes a client balance.
type MovementKind string

const (
	KindCredit MovementKind = "CREDIT"
	KindDebit  MovementKind = "DEBIT"
)

// Movement is one voucher credit or debit for a client.
type Movement struct {
	ID          string       `json:"id"`
	CompanyID   string       `json:"company_id"`
	Client      string       `json:"client"`
	Kind        MovementKind `json:"kind"`
	Value       float64      `json:"value"`
	Description string       `json:"description,omitempty"`
	Date        time.Time    `json:"date"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Balance is a client's current voucher position, never negative.
type Balance struct {
	Client  string  `json:"client"`
	Balance float64 `json:"balance"`
}

// CreateMovementRequest is the payload for POST /vouchers.
type CreateMovementRequest struct {
	Client      string    `json:"client" validate:"required"`
	Kind        string    `json:"kind" validate:"required,oneof=CREDIT DEBIT"`
	Value       float64   `json:"value" validate:"gt=0"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}
