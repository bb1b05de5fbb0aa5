package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/platform/db"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for settlements.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ClaimAndCreate runs the settlement unit in one RepeatableRead transaction:
// lock candidate rows, reject missing (NotFound) or already-claimed
// (Conflict) rows, persist the settlement produced by build, link the rows
// and consume the pending expenses. Any failure rolls everything back.
func (r *Repository) ClaimAndCreate(ctx context.Context, companyID string, rowIDs, pendingExpenseIDs []string, build func(rows []RowProfit) (*Settlement, error)) (*Settlement, error) {
	var created *Settlement
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id, profit_value, settlement_id FROM sale_rows WHERE company_id=$1 AND id = ANY($2) FOR UPDATE`,
			companyID, rowIDs)
		if err != nil {
			return fmt.Errorf("settlement: lock rows: %w", err)
		}
		profits := make([]RowProfit, 0, len(rowIDs))
		for rows.Next() {
			var rp RowProfit
			var claimedBy *string
			if err := rows.Scan(&rp.ID, &rp.ProfitValue, &claimedBy); err != nil {
				rows.Close()
				return fmt.Errorf("settlement: scan row: %w", err)
			}
			if claimedBy != nil {
				rows.Close()
				return fmt.Errorf("settlement: row %s already claimed by settlement %s: %w", rp.ID, *claimedBy, shared.ErrConflict)
			}
			profits = append(profits, rp)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(profits) != len(rowIDs) {
			return fmt.Errorf("settlement: %d of %d candidate rows missing in scope: %w",
				len(rowIDs)-len(profits), len(rowIDs), shared.ErrNotFound)
		}

		s, err := build(profits)
		if err != nil {
			return err
		}

		rowIDsJSON, _ := json.Marshal(s.RowIDs)
		distJSON, _ := json.Marshal(s.Distributions)
		expJSON, _ := json.Marshal(s.Expenses)
		var receiptJSON []byte
		if s.LastBankReceipt != nil {
			receiptJSON, _ = json.Marshal(s.LastBankReceipt)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO settlements
(id, company_id, date, title, notes, row_ids, total_profit, total_shared_expense, total_individual_expense,
 distributable, distributions, expenses, last_bank_receipt, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			s.ID, s.CompanyID, s.Date, s.Title, s.Notes, rowIDsJSON, s.TotalProfit, s.TotalSharedExpense,
			s.TotalIndividualExpense, s.Distributable, distJSON, expJSON, receiptJSON, s.Status, s.CreatedAt); err != nil {
			return fmt.Errorf("settlement: insert: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE sale_rows SET settlement_id=$1, settlement_status='DONE', updated_at=NOW()
WHERE company_id=$2 AND id = ANY($3) AND settlement_id IS NULL`,
			s.ID, companyID, s.RowIDs)
		if err != nil {
			return fmt.Errorf("settlement: link rows: %w", err)
		}
		if int(tag.RowsAffected()) != len(s.RowIDs) {
			return fmt.Errorf("settlement: claimed %d of %d rows: %w", tag.RowsAffected(), len(s.RowIDs), shared.ErrConflict)
		}

		if len(pendingExpenseIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE pending_expenses SET status='USED', used_in_settlement=$1 WHERE company_id=$2 AND id = ANY($3)`,
				s.ID, companyID, pendingExpenseIDs); err != nil {
				return fmt.Errorf("settlement: mark pending expenses: %w", err)
			}
		}

		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

const settlementColumns = `id, company_id, date, title, notes, row_ids, total_profit, total_shared_expense,
total_individual_expense, distributable, distributions, expenses, last_bank_receipt, status, created_at`

func scanSettlement(row pgx.Row) (*Settlement, error) {
	var s Settlement
	var rowIDsJSON, distJSON, expJSON, receiptJSON []byte
	err := row.Scan(&s.ID, &s.CompanyID, &s.Date, &s.Title, &s.Notes, &rowIDsJSON, &s.TotalProfit,
		&s.TotalSharedExpense, &s.TotalIndividualExpense, &s.Distributable, &distJSON, &expJSON,
		&receiptJSON, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rowIDsJSON, &s.RowIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(distJSON, &s.Distributions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(expJSON, &s.Expenses); err != nil {
		return nil, err
	}
	if len(receiptJSON) > 0 {
		s.LastBankReceipt = &BankReceipt{}
		if err := json.Unmarshal(receiptJSON, s.LastBankReceipt); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Get returns one settlement in scope.
func (r *Repository) Get(ctx context.Context, companyID, id string) (*Settlement, error) {
	s, err := scanSettlement(r.pool.QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id=$1 AND company_id=$2`, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("settlement: %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("settlement: get: %w", err)
	}
	return s, nil
}

// List returns the settlement history for the company, newest first.
func (r *Repository) List(ctx context.Context, companyID string) ([]Settlement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE company_id=$1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("settlement: list: %w", err)
	}
	defer rows.Close()
	var out []Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("settlement: scan: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close flips a settlement to CLOSED.
func (r *Repository) Close(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE settlements SET status='CLOSED' WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("settlement: close: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("settlement: %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

// SavePendingExpense inserts or rewrites a pending expense template.
func (r *Repository) SavePendingExpense(ctx context.Context, exp PendingExpense) (*PendingExpense, error) {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO pending_expenses
(id, company_id, description, value, kind, participant_id, status, used_in_settlement, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET description=$3, value=$4, kind=$5, participant_id=$6`,
		exp.ID, exp.CompanyID, exp.Description, exp.Value, exp.Kind, nullIfEmpty(exp.ParticipantID),
		exp.Status, exp.UsedInSettlement, exp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("settlement: save pending expense: %w", err)
	}
	return &exp, nil
}

// ListPendingExpenses returns every template for the company, newest first.
func (r *Repository) ListPendingExpenses(ctx context.Context, companyID string) ([]PendingExpense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, description, value, kind, participant_id, status, used_in_settlement, created_at
FROM pending_expenses WHERE company_id=$1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("settlement: list pending expenses: %w", err)
	}
	defer rows.Close()
	var out []PendingExpense
	for rows.Next() {
		var exp PendingExpense
		var participantID *string
		if err := rows.Scan(&exp.ID, &exp.CompanyID, &exp.Description, &exp.Value, &exp.Kind,
			&participantID, &exp.Status, &exp.UsedInSettlement, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("settlement: scan pending expense: %w", err)
		}
		if participantID != nil {
			exp.ParticipantID = *participantID
		}
		out = append(out, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeletePendingExpense removes a template.
func (r *Repository) DeletePendingExpense(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pending_expenses WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("settlement: delete pending expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("settlement: pending expense %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
