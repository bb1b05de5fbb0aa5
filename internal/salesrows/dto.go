package salesrows

import "time"

type CreateSaleRowRequest struct {
	OrderDate         *time.Time `json:"order_date,omitempty"`
	OrderNumber       string     `json:"order_number,omitempty" validate:"max=40"`
	WaiverNumber      string     `json:"waiver_number,omitempty" validate:"max=40"`
	Client            string     `json:"client,omitempty" validate:"max=200"`
	Product           string     `json:"product,omitempty" validate:"max=200"`
	Modality          string     `json:"modality,omitempty" validate:"max=100"`
	SaleValue         float64    `json:"sale_value" validate:"gte=0"`
	CapitalFeePercent float64    `json:"capital_fee_percent" validate:"gte=0,lte=100"`
	TaxPercent        float64    `json:"tax_percent" validate:"gte=0,lte=100"`
	MerchandiseCost   float64    `json:"merchandise_cost" validate:"gte=0"`
	ReceivedDate      *time.Time `json:"received_date,omitempty"`
	PaymentStatus     *string    `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING RECEIVED"`
	Color             string     `json:"color,omitempty" validate:"max=20"`
}

type UpdateSaleRowRequest struct {
	OrderDate         *time.Time `json:"order_date,omitempty"`
	OrderNumber       *string    `json:"order_number,omitempty" validate:"omitempty,max=40"`
	WaiverNumber      *string    `json:"waiver_number,omitempty" validate:"omitempty,max=40"`
	Client            *string    `json:"client,omitempty" validate:"omitempty,max=200"`
	Product           *string    `json:"product,omitempty" validate:"omitempty,max=200"`
	Modality          *string    `json:"modality,omitempty" validate:"omitempty,max=100"`
	SaleValue         *float64   `json:"sale_value,omitempty" validate:"omitempty,gte=0"`
	CapitalFeePercent *float64   `json:"capital_fee_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxPercent        *float64   `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	MerchandiseCost   *float64   `json:"merchandise_cost,omitempty" validate:"omitempty,gte=0"`
	ReceivedDate      *time.Time `json:"received_date,omitempty"`
	PaymentStatus     *string    `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING RECEIVED"`
	Color             *string    `json:"color,omitempty" validate:"omitempty,max=20"`
}
