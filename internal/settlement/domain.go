package settlement

import "time"

// Status enumerates settlement lifecycle states.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// ExpenseKind splits expenses between the shared pool and a single
// participant's payout.
type ExpenseKind string

const (
	// ExpenseShared reduces the distributable pool before the percentage split.
	ExpenseShared ExpenseKind = "SHARED"
	// ExpenseIndividual reduces only the owning participant's payout after the split.
	ExpenseIndividual ExpenseKind = "INDIVIDUAL"
)

// Expense belongs to one settlement being constructed.
type Expense struct {
	ID            string      `json:"id"`
	Description   string      `json:"description"`
	Value         float64     `json:"value"`
	Kind          ExpenseKind `json:"kind"`
	ParticipantID string      `json:"participant_id,omitempty"`
}

// BankReceipt is free-form metadata about the last bank credit observed when
// a settlement was assembled.
type BankReceipt struct {
	Name   string     `json:"name,omitempty"`
	Amount float64    `json:"amount,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Bank   string     `json:"bank,omitempty"`
}

// Distribution is one participant's frozen share of a settlement.
type Distribution struct {
	ParticipantID       string  `json:"participant_id"`
	Percent             float64 `json:"percent"`
	GrossShare          float64 `json:"gross_share"`
	IndividualDeduction float64 `json:"individual_deduction"`
	NetPayout           float64 `json:"net_payout"`
}

// Settlement is an immutable financial snapshot. After creation only the
// status may move, OPEN to CLOSED; the figures are never recomputed.
type Settlement struct {
	ID                     string         `json:"id"`
	CompanyID              string         `json:"company_id"`
	Date                   time.Time      `json:"date"`
	Title                  string         `json:"title,omitempty"`
	Notes                  string         `json:"notes,omitempty"`
	RowIDs                 []string       `json:"row_ids"`
	TotalProfit            float64        `json:"total_profit"`
	TotalSharedExpense     float64        `json:"total_shared_expense"`
	TotalIndividualExpense float64        `json:"total_individual_expense"`
	Distributable          float64        `json:"distributable"`
	Distributions          []Distribution `json:"distributions"`
	Expenses               []Expense      `json:"expenses"`
	LastBankReceipt        *BankReceipt   `json:"last_bank_receipt,omitempty"`
	Status                 Status         `json:"status"`
	CreatedAt              time.Time      `json:"created_at"`
}

// PendingExpenseStatus enumerates pending-expense template states.
type PendingExpenseStatus string

const (
	PendingExpenseOpen PendingExpenseStatus = "PENDING"
	PendingExpenseUsed PendingExpenseStatus = "USED"
)

// PendingExpense is an expense template saved ahead of a settlement. It flips
// to USED (with the settlement id) inside the same transaction that creates
// the settlement consuming it.
type PendingExpense struct {
	Expense
	CompanyID        string               `json:"company_id"`
	Status           PendingExpenseStatus `json:"status"`
	UsedInSettlement *string              `json:"used_in_settlement,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// RowProfit is the slice of a sale row the engine needs: its identity and the
// profit value persisted on it.
type RowProfit struct {
	ID          string
	ProfitValue float64
}

// PlanEntry is one (participant, percentage) pair of a distribution plan.
// Percentages are whole percent: 50 means 50%.
type PlanEntry struct {
	ParticipantID string  `json:"participant_id" validate:"required"`
	Percent       float64 `json:"percent" validate:"gte=0"`
}
