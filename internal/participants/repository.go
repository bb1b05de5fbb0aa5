package participants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for participants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new participant.
func (r *Repository) Create(ctx context.Context, p Participant) (*Participant, error) {
	p.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO participants (id, company_id, name, active, default_percent, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.CompanyID, p.Name, p.Active, p.DefaultPercent, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("participants: insert: %w", err)
	}
	return &p, nil
}

// Update rewrites name, active flag and default percentage.
func (r *Repository) Update(ctx context.Context, p Participant) (*Participant, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE participants SET name=$3, active=$4, default_percent=$5 WHERE id=$1 AND company_id=$2`,
		p.ID, p.CompanyID, p.Name, p.Active, p.DefaultPercent)
	if err != nil {
		return nil, fmt.Errorf("participants: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("participants: %s: %w", p.ID, shared.ErrNotFound)
	}
	return &p, nil
}

// Get returns one participant in scope.
func (r *Repository) Get(ctx context.Context, companyID, id string) (*Participant, error) {
	var p Participant
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, active, default_percent, created_at FROM participants WHERE id=$1 AND company_id=$2`,
		id, companyID).Scan(&p.ID, &p.CompanyID, &p.Name, &p.Active, &p.DefaultPercent, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("participants: %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("participants: get: %w", err)
	}
	return &p, nil
}

// List returns all participants for the company.
func (r *Repository) List(ctx context.Context, companyID string) ([]Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, active, default_percent, created_at FROM participants WHERE company_id=$1 ORDER BY name`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("participants: list: %w", err)
	}
	defer rows.Close()
	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Active, &p.DefaultPercent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("participants: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a participant. Past settlements keep their snapshot.
func (r *Repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return fmt.Errorf("participants: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participants: %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
