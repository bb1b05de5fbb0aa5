package salesrows

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecomputeDerivesCostAndProfit(t *testing.T) {
	row := SaleRow{
		SaleValue:         1000,
		CapitalFeePercent: 3,
		TaxPercent:        7,
		MerchandiseCost:   600,
	}
	row.Recompute()

	require.InDelta(t, 30.0, row.CapitalFeeValue, 0.001)
	require.InDelta(t, 70.0, row.TaxValue, 0.001)
	require.InDelta(t, 700.0, row.FinalCost, 0.001)
	require.InDelta(t, 300.0, row.ProfitValue, 0.001)
	require.InDelta(t, 30.0, row.ProfitPercent, 0.001)
	require.Equal(t, PaymentPending, row.PaymentStatus)
	require.Equal(t, SettlementPending, row.SettlementStatus)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	row := SaleRow{
		SaleValue:         333.33,
		CapitalFeePercent: 2.5,
		TaxPercent:        11.3,
		MerchandiseCost:   150.07,
	}
	row.Recompute()
	first := row
	row.Recompute()

	require.InDelta(t, first.CapitalFeeValue, row.CapitalFeeValue, 0.0001)
	require.InDelta(t, first.TaxValue, row.TaxValue, 0.0001)
	require.InDelta(t, first.FinalCost, row.FinalCost, 0.0001)
	require.InDelta(t, first.ProfitValue, row.ProfitValue, 0.0001)
	require.InDelta(t, first.ProfitPercent, row.ProfitPercent, 0.0001)
}

func TestRecomputeRoundsEachStep(t *testing.T) {
	row := SaleRow{
		SaleValue:         100.55,
		CapitalFeePercent: 1.111,
		TaxPercent:        2.222,
		MerchandiseCost:   50.01,
	}
	row.Recompute()

	require.InDelta(t, 1.12, row.CapitalFeeValue, 0.0001)
	require.InDelta(t, 2.23, row.TaxValue, 0.0001)
	require.InDelta(t, 53.36, row.FinalCost, 0.0001)
	require.InDelta(t, 47.19, row.ProfitValue, 0.0001)
}

func TestRecomputeZeroSaleValue(t *testing.T) {
	row := SaleRow{MerchandiseCost: 40}
	row.Recompute()

	require.InDelta(t, 40.0, row.FinalCost, 0.001)
	require.InDelta(t, -40.0, row.ProfitValue, 0.001)
	require.InDelta(t, 0.0, row.ProfitPercent, 0.001)
}

func TestRecomputeForcesDoneWhenLinked(t *testing.T) {
	id := "settle-1"
	row := SaleRow{SaleValue: 100, SettlementID: &id, SettlementStatus: SettlementPending}
	row.Recompute()
	require.Equal(t, SettlementDone, row.SettlementStatus)
}
