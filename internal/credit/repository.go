package credit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for credit records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const creditColumns = `id, company_id, counterparty, kind, description, principal, start_date,
interest_enabled, monthly_rate_percent, payments, created_at, updated_at`

func scanCreditRecord(row pgx.Row) (*CreditRecord, error) {
	var rec CreditRecord
	var paymentsJSON []byte
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.Counterparty, &rec.Kind, &rec.Description,
		&rec.Principal, &rec.StartDate, &rec.InterestEnabled, &rec.MonthlyRatePercent,
		&paymentsJSON, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(paymentsJSON, &rec.Payments); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a record.
func (r *Repository) Create(ctx context.Context, rec CreditRecord) (*CreditRecord, error) {
	paymentsJSON, _ := json.Marshal(rec.Payments)
	_, err := r.pool.Exec(ctx, `INSERT INTO credit_records (`+creditColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.CompanyID, rec.Counterparty, rec.Kind, rec.Description, rec.Principal,
		rec.StartDate, rec.InterestEnabled, rec.MonthlyRatePercent, paymentsJSON,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("credit: insert: %w", err)
	}
	return &rec, nil
}

// Update rewrites a record in scope, payments included.
func (r *Repository) Update(ctx context.Context, rec CreditRecord) (*CreditRecord, error) {
	paymentsJSON, _ := json.Marshal(rec.Payments)
	tag, err := r.pool.Exec(ctx, `UPDATE credit_records
SET counterparty=$1, kind=$2, description=$3, principal=$4, start_date=$5,
    interest_enabled=$6, monthly_rate_percent=$7, payments=$8, updated_at=$9
WHERE id=$10 AND company_id=$11`,
		rec.Counterparty, rec.Kind, rec.Description, rec.Principal, rec.StartDate,
		rec.InterestEnabled, rec.MonthlyRatePercent, paymentsJSON, rec.UpdatedAt,
		rec.ID, rec.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("credit: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("credit: record %s: %w", rec.ID, shared.ErrNotFound)
	}
	return &rec, nil
}

// Get returns one record in scope.
func (r *Repository) Get(ctx context.Context, companyID, id string) (*CreditRecord, error) {
	rec, err := scanCreditRecord(r.pool.QueryRow(ctx,
		`SELECT `+creditColumns+` FROM credit_records WHERE id=$1 AND company_id=$2`, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("credit: record %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("credit: get: %w", err)
	}
	return rec, nil
}

// List returns every record for the company, newest first.
func (r *Repository) List(ctx context.Context, companyID string) ([]CreditRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+creditColumns+` FROM credit_records WHERE company_id=$1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("credit: list: %w", err)
	}
	defer rows.Close()
	var out []CreditRecord
	for rows.Next() {
		rec, err := scanCreditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("credit: scan: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record in scope.
func (r *Repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM credit_records WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("credit: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit: record %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
