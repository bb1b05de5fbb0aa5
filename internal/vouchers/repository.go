package vouchers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/platform/db"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for voucher movements.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const movementColumns = `id, company_id, client, kind, value, description, date, created_at`

// Insert persists a credit movement without a balance check.
func (r *Repository) Insert(ctx context.Context, m Movement) (*Movement, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO voucher_movements (`+movementColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.CompanyID, m.Client, m.Kind, m.Value, m.Description, m.Date, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("vouchers: insert: %w", err)
	}
	return &m, nil
}

// InsertDebit persists a debit only if the client's balance covers it, the
// read and the write in one transaction so concurrent debits cannot both
// spend the same credit.
func (r *Repository) InsertDebit(ctx context.Context, m Movement) (*Movement, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var balance float64
		err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(CASE WHEN kind='CREDIT' THEN value ELSE -value END), 0)
FROM (SELECT kind, value FROM voucher_movements WHERE company_id=$1 AND client=$2 FOR UPDATE) m`,
			m.CompanyID, m.Client).Scan(&balance)
		if err != nil {
			return fmt.Errorf("vouchers: balance read: %w", err)
		}
		if balance < m.Value {
			return fmt.Errorf("vouchers: debit %.2f exceeds balance %.2f for %s: %w",
				m.Value, balance, m.Client, shared.ErrConflict)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO voucher_movements (`+movementColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.CompanyID, m.Client, m.Kind, m.Value, m.Description, m.Date, m.CreatedAt); err != nil {
			return fmt.Errorf("vouchers: insert debit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByClient returns a client's movements, oldest first.
func (r *Repository) ListByClient(ctx context.Context, companyID, client string) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+` FROM voucher_movements
WHERE company_id=$1 AND client=$2 ORDER BY date, created_at`, companyID, client)
	if err != nil {
		return nil, fmt.Errorf("vouchers: list by client: %w", err)
	}
	return collect(rows)
}

// List returns every movement for the company, newest first.
func (r *Repository) List(ctx context.Context, companyID string) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+` FROM voucher_movements
WHERE company_id=$1 ORDER BY date DESC, created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("vouchers: list: %w", err)
	}
	return collect(rows)
}

// BalanceFor returns one client's net balance, floored at zero.
func (r *Repository) BalanceFor(ctx context.Context, companyID, client string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `SELECT GREATEST(COALESCE(SUM(CASE WHEN kind='CREDIT' THEN value ELSE -value END), 0), 0)
FROM voucher_movements WHERE company_id=$1 AND client=$2`, companyID, client).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("vouchers: balance: %w", err)
	}
	return balance, nil
}

// Balances returns the net balance per client, floored at zero.
func (r *Repository) Balances(ctx context.Context, companyID string) ([]Balance, error) {
	rows, err := r.pool.Query(ctx, `SELECT client, GREATEST(SUM(CASE WHEN kind='CREDIT' THEN value ELSE -value END), 0)
FROM voucher_movements WHERE company_id=$1 GROUP BY client ORDER BY client`, companyID)
	if err != nil {
		return nil, fmt.Errorf("vouchers: balances: %w", err)
	}
	defer rows.Close()
	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.Client, &b.Balance); err != nil {
			return nil, fmt.Errorf("vouchers: scan balance: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a movement in scope.
func (r *Repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM voucher_movements WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("vouchers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vouchers: movement %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func collect(rows pgx.Rows) ([]Movement, error) {
	defer rows.Close()
	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Client, &m.Kind, &m.Value, &m.Description, &m.Date, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("vouchers: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
