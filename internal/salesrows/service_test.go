package salesrows

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

type memorySaleRowRepo struct {
	rows map[string]*SaleRow
}

func newMemorySaleRowRepo() *memorySaleRowRepo {
	return &memorySaleRowRepo{rows: make(map[string]*SaleRow)}
}

func (r *memorySaleRowRepo) Create(ctx context.Context, row SaleRow) (*SaleRow, error) {
	row.ID = uuid.NewString()
	stored := row
	r.rows[row.ID] = &stored
	return &row, nil
}

func (r *memorySaleRowRepo) Update(ctx context.Context, row SaleRow) (*SaleRow, error) {
	if _, ok := r.rows[row.ID]; !ok {
		return nil, fmt.Errorf("salesrows: %s: %w", row.ID, shared.ErrNotFound)
	}
	stored := row
	r.rows[row.ID] = &stored
	return &row, nil
}

func (r *memorySaleRowRepo) Get(ctx context.Context, companyID, id string) (*SaleRow, error) {
	row, ok := r.rows[id]
	if !ok || row.CompanyID != companyID {
		return nil, fmt.Errorf("salesrows: %s: %w", id, shared.ErrNotFound)
	}
	clone := *row
	return &clone, nil
}

func (r *memorySaleRowRepo) List(ctx context.Context, companyID string) ([]SaleRow, error) {
	var out []SaleRow
	for _, row := range r.rows {
		if row.CompanyID == companyID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memorySaleRowRepo) ListPendingSettlement(ctx context.Context, companyID string) ([]SaleRow, error) {
	var out []SaleRow
	for _, row := range r.rows {
		if row.CompanyID == companyID && row.PaymentStatus == PaymentReceived && row.SettlementID == nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memorySaleRowRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("salesrows: %s: %w", id, shared.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func TestServiceCreateComputesDerivedFields(t *testing.T) {
	svc := NewService(newMemorySaleRowRepo(), nil)

	row, err := svc.Create(context.Background(), "co-1", CreateSaleRowRequest{
		SaleValue:         1000,
		CapitalFeePercent: 3,
		TaxPercent:        7,
		MerchandiseCost:   600,
	})
	require.NoError(t, err)
	require.InDelta(t, 700.0, row.FinalCost, 0.001)
	require.InDelta(t, 300.0, row.ProfitValue, 0.001)
	require.Equal(t, PaymentPending, row.PaymentStatus)
}

func TestServiceCreateRequiresCompanyScope(t *testing.T) {
	svc := NewService(newMemorySaleRowRepo(), nil)

	_, err := svc.Create(context.Background(), "", CreateSaleRowRequest{SaleValue: 10})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestServiceUpdateRecomputesAndKeepsLinkage(t *testing.T) {
	repo := newMemorySaleRowRepo()
	svc := NewService(repo, nil)

	row, err := svc.Create(context.Background(), "co-1", CreateSaleRowRequest{
		SaleValue:       500,
		MerchandiseCost: 300,
	})
	require.NoError(t, err)

	// simulate an engine-side linkage
	linked := repo.rows[row.ID]
	settlementID := "settle-1"
	linked.SettlementID = &settlementID
	linked.SettlementStatus = SettlementDone

	newValue := 800.0
	updated, err := svc.Update(context.Background(), "co-1", row.ID, UpdateSaleRowRequest{
		SaleValue: &newValue,
	})
	require.NoError(t, err)
	require.InDelta(t, 500.0, updated.ProfitValue, 0.001)
	require.NotNil(t, updated.SettlementID)
	require.Equal(t, settlementID, *updated.SettlementID)
	require.Equal(t, SettlementDone, updated.SettlementStatus)
}

func TestServicePendingForSettlement(t *testing.T) {
	repo := newMemorySaleRowRepo()
	svc := NewService(repo, nil)

	received := "RECEIVED"
	a, err := svc.Create(context.Background(), "co-1", CreateSaleRowRequest{
		SaleValue: 100, PaymentStatus: &received,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "co-1", CreateSaleRowRequest{SaleValue: 200})
	require.NoError(t, err)

	pending, err := svc.PendingForSettlement(context.Background(), "co-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, a.ID, pending[0].ID)
}
