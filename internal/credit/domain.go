package credit

import "time"

// Kind distinguishes informal loans from deferred sales.
type Kind string

const (
	KindLoan Kind = "LOAN"
	KindSale Kind = "SALE"
)

// PartialPayment is one irregular repayment against a credit record.
type PartialPayment struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Note   string    `json:"note,omitempty"`
}

// CreditRecord is an informal loan or deferred sale. It stores no current
// balance; the balance is derived at read time from principal, rate and the
// payment history as of a given date.
type CreditRecord struct {
	ID                 string           `json:"id"`
	CompanyID          string           `json:"company_id"`
	Counterparty       string           `json:"counterparty"`
	Kind               Kind             `json:"kind"`
	Description        string           `json:"description,omitempty"`
	Principal          float64          `json:"principal"`
	StartDate          time.Time        `json:"start_date"`
	InterestEnabled    bool             `json:"interest_enabled"`
	MonthlyRatePercent float64          `json:"monthly_rate_percent"`
	Payments           []PartialPayment `json:"payments"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TotalPaid sums the payment history, ignoring timing.
func (c CreditRecord) TotalPaid() float64 {
	var paid float64
	for _, p := range c.Payments {
		paid += p.Amount
	}
	return paid
}

// AccrualResult is the derived state of a credit record as of a date.
type AccrualResult struct {
	MonthsTotal         int     `json:"months_total"`
	InterestAccrued     float64 `json:"interest_accrued"`
	BalanceWithInterest float64 `json:"balance_with_interest"`
	RemainingPrincipal  float64 `json:"remaining_principal"`
}

// PortfolioTotals aggregates accrual results across a company's records.
type PortfolioTotals struct {
	TotalPrincipal               float64 `json:"total_principal"`
	PaidPrincipal                float64 `json:"paid_principal"`
	PendingInterest              float64 `json:"pending_interest"`
	TotalOutstandingWithInterest float64 `json:"total_outstanding_with_interest"`
}
