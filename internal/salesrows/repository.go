package salesrows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for sale rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleRowColumns = `id, company_id, order_date, order_number, waiver_number, client, product, modality,
sale_value, capital_fee_percent, capital_fee_value, tax_percent, tax_value, merchandise_cost,
final_cost, profit_value, profit_percent, received_date, payment_status, settlement_status,
settlement_id, color, created_at, updated_at`

func scanSaleRow(row pgx.Row) (*SaleRow, error) {
	var r SaleRow
	err := row.Scan(&r.ID, &r.CompanyID, &r.OrderDate, &r.OrderNumber, &r.WaiverNumber, &r.Client,
		&r.Product, &r.Modality, &r.SaleValue, &r.CapitalFeePercent, &r.CapitalFeeValue,
		&r.TaxPercent, &r.TaxValue, &r.MerchandiseCost, &r.FinalCost, &r.ProfitValue,
		&r.ProfitPercent, &r.ReceivedDate, &r.PaymentStatus, &r.SettlementStatus,
		&r.SettlementID, &r.Color, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new sale row.
func (repo *Repository) Create(ctx context.Context, row SaleRow) (*SaleRow, error) {
	row.ID = uuid.NewString()
	_, err := repo.pool.Exec(ctx, `INSERT INTO sale_rows (`+saleRowColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		row.ID, row.CompanyID, row.OrderDate, row.OrderNumber, row.WaiverNumber, row.Client,
		row.Product, row.Modality, row.SaleValue, row.CapitalFeePercent, row.CapitalFeeValue,
		row.TaxPercent, row.TaxValue, row.MerchandiseCost, row.FinalCost, row.ProfitValue,
		row.ProfitPercent, row.ReceivedDate, row.PaymentStatus, row.SettlementStatus,
		row.SettlementID, row.Color, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("salesrows: insert: %w", err)
	}
	return &row, nil
}

// Update rewrites a row. Derived fields arrive recomputed from the service.
func (repo *Repository) Update(ctx context.Context, row SaleRow) (*SaleRow, error) {
	tag, err := repo.pool.Exec(ctx, `UPDATE sale_rows SET
order_date=$3, order_number=$4, waiver_number=$5, client=$6, product=$7, modality=$8,
sale_value=$9, capital_fee_percent=$10, capital_fee_value=$11, tax_percent=$12, tax_value=$13,
merchandise_cost=$14, final_cost=$15, profit_value=$16, profit_percent=$17, received_date=$18,
payment_status=$19, settlement_status=$20, color=$21, updated_at=$22
WHERE id=$1 AND company_id=$2`,
		row.ID, row.CompanyID, row.OrderDate, row.OrderNumber, row.WaiverNumber, row.Client,
		row.Product, row.Modality, row.SaleValue, row.CapitalFeePercent, row.CapitalFeeValue,
		row.TaxPercent, row.TaxValue, row.MerchandiseCost, row.FinalCost, row.ProfitValue,
		row.ProfitPercent, row.ReceivedDate, row.PaymentStatus, row.SettlementStatus,
		row.Color, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("salesrows: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("salesrows: row %s: %w", row.ID, shared.ErrNotFound)
	}
	return &row, nil
}

// Get returns one row scoped to the company.
func (repo *Repository) Get(ctx context.Context, companyID, id string) (*SaleRow, error) {
	r, err := scanSaleRow(repo.pool.QueryRow(ctx,
		`SELECT `+saleRowColumns+` FROM sale_rows WHERE id=$1 AND company_id=$2`, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("salesrows: row %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("salesrows: get: %w", err)
	}
	return r, nil
}

// List returns all rows for the company, newest order date first.
func (repo *Repository) List(ctx context.Context, companyID string) ([]SaleRow, error) {
	return repo.queryRows(ctx,
		`SELECT `+saleRowColumns+` FROM sale_rows WHERE company_id=$1 ORDER BY order_date DESC NULLS LAST, created_at DESC`,
		companyID)
}

// ListPendingSettlement returns received rows not yet linked to a settlement.
func (repo *Repository) ListPendingSettlement(ctx context.Context, companyID string) ([]SaleRow, error) {
	return repo.queryRows(ctx,
		`SELECT `+saleRowColumns+` FROM sale_rows
WHERE company_id=$1 AND payment_status='RECEIVED' AND settlement_id IS NULL
ORDER BY order_date ASC NULLS LAST, created_at ASC`,
		companyID)
}

// Delete removes a row.
func (repo *Repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := repo.pool.Exec(ctx, `DELETE FROM sale_rows WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("salesrows: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("salesrows: row %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (repo *Repository) queryRows(ctx context.Context, query string, args ...any) ([]SaleRow, error) {
	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("salesrows: query: %w", err)
	}
	defer rows.Close()
	var out []SaleRow
	for rows.Next() {
		r, err := scanSaleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("salesrows: scan: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
