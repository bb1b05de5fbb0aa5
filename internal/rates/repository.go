package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for rate presets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a preset.
func (r *Repository) Create(ctx context.Context, p Preset) (*Preset, error) {
	p.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rate_presets (id, company_id, name, kind, percent, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.CompanyID, p.Name, p.Kind, p.Percent, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("rates: insert: %w", err)
	}
	return &p, nil
}

// Update rewrites name, kind and percent.
func (r *Repository) Update(ctx context.Context, p Preset) (*Preset, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rate_presets SET name=$3, kind=$4, percent=$5 WHERE id=$1 AND company_id=$2`,
		p.ID, p.CompanyID, p.Name, p.Kind, p.Percent)
	if err != nil {
		return nil, fmt.Errorf("rates: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("rates: preset %s: %w", p.ID, shared.ErrNotFound)
	}
	return &p, nil
}

// Get returns one preset in scope.
func (r *Repository) Get(ctx context.Context, companyID, id string) (*Preset, error) {
	var p Preset
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, kind, percent, created_at FROM rate_presets WHERE id=$1 AND company_id=$2`,
		id, companyID).Scan(&p.ID, &p.CompanyID, &p.Name, &p.Kind, &p.Percent, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rates: preset %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("rates: get: %w", err)
	}
	return &p, nil
}

// List returns every preset for the company ordered by name.
func (r *Repository) List(ctx context.Context, companyID string) ([]Preset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, kind, percent, created_at FROM rate_presets WHERE company_id=$1 ORDER BY name`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("rates: list: %w", err)
	}
	defer rows.Close()
	var out []Preset
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Kind, &p.Percent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("rates: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a preset.
func (r *Repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_presets WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("rates: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rates: preset %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
