package salesrows

import (
	"math"
	"time"
)

// PaymentStatus enumerates sale-row payment states.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentReceived PaymentStatus = "RECEIVED"
)

// SettlementStatus enumerates sale-row settlement states.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "PENDING"
	SettlementDone    SettlementStatus = "DONE"
)

// SaleRow is one sale transaction with its derived financial facts.
// FinalCost, ProfitValue and ProfitPercent are always recomputed from the
// inputs via Recompute; they are never set independently.
type SaleRow struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	OrderDate    *time.Time `json:"order_date,omitempty"`
	OrderNumber  string     `json:"order_number,omitempty"`
	WaiverNumber string     `json:"waiver_number,omitempty"`
	Client       string     `json:"client,omitempty"`
	Product      string     `json:"product,omitempty"`
	Modality     string     `json:"modality,omitempty"`

	SaleValue         float64 `json:"sale_value"`
	CapitalFeePercent float64 `json:"capital_fee_percent"`
	CapitalFeeValue   float64 `json:"capital_fee_value"`
	TaxPercent        float64 `json:"tax_percent"`
	TaxValue          float64 `json:"tax_value"`
	MerchandiseCost   float64 `json:"merchandise_cost"`
	FinalCost         float64 `json:"final_cost"`
	ProfitValue       float64 `json:"profit_value"`
	ProfitPercent     float64 `json:"profit_percent"`

	ReceivedDate     *time.Time       `json:"received_date,omitempty"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	SettlementStatus SettlementStatus `json:"settlement_status"`
	SettlementID     *string          `json:"settlement_id,omitempty"`
	Color            string           `json:"color,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recompute derives fee values, final cost, profit value and profit percent
// from the row inputs. Every derived currency value is rounded to 2 decimals
// at its own step so repeated recomputation is idempotent.
func (r *SaleRow) Recompute() {
	r.CapitalFeeValue = round(r.SaleValue * (r.CapitalFeePercent / 100))
	r.TaxValue = round(r.SaleValue * (r.TaxPercent / 100))
	r.FinalCost = round(r.MerchandiseCost + r.CapitalFeeValue + r.TaxValue)
	r.ProfitValue = round(r.SaleValue - r.FinalCost)
	if r.SaleValue > 0 {
		r.ProfitPercent = round(r.ProfitValue / r.SaleValue * 100)
	} else {
		r.ProfitPercent = 0
	}

	if r.PaymentStatus == "" {
		r.PaymentStatus = PaymentPending
	}
	// A linked row is always DONE.
	if r.SettlementID != nil && *r.SettlementID != "" {
		r.SettlementStatus = SettlementDone
	} else if r.SettlementStatus == "" {
		r.SettlementStatus = SettlementPending
	}
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
