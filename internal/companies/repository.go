package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for companies.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new company.
func (r *Repository) Create(ctx context.Context, c Company) (*Company, error) {
	c.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (id, name, active, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Active, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("companies: insert: %w", err)
	}
	return &c, nil
}

// Update rewrites name and active flag.
func (r *Repository) Update(ctx context.Context, c Company) (*Company, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET name=$2, active=$3 WHERE id=$1`, c.ID, c.Name, c.Active)
	if err != nil {
		return nil, fmt.Errorf("companies: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("companies: %s: %w", c.ID, shared.ErrNotFound)
	}
	return &c, nil
}

// Get returns one company.
func (r *Repository) Get(ctx context.Context, id string) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active, created_at FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("companies: %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("companies: get: %w", err)
	}
	return &c, nil
}

// List returns all companies ordered by name.
func (r *Repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, active, created_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("companies: list: %w", err)
	}
	defer rows.Close()
	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("companies: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a company record. Scoped data is left for offline cleanup.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("companies: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("companies: %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
