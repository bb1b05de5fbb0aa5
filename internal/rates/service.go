package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// RepositoryPort defines data access methods for rate presets.
type RepositoryPort interface {
	Create(ctx context.Context, p Preset) (*Preset, error)
	Update(ctx context.Context, p Preset) (*Preset, error)
	Get(ctx context.Context, companyID, id string) (*Preset, error)
	List(ctx context.Context, companyID string) ([]Preset, error)
	Delete(ctx context.Context, companyID, id string) error
}

// Service handles rate preset logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a preset.
func (s *Service) Create(ctx context.Context, companyID string, req SavePresetRequest) (*Preset, error) {
	if companyID == "" {
		return nil, fmt.Errorf("rates: company scope required: %w", shared.ErrInvalidInput)
	}
	return s.repo.Create(ctx, Preset{
		CompanyID: companyID,
		Name:      req.Name,
		Kind:      PresetKind(req.Kind),
		Percent:   req.Percent,
		CreatedAt: time.Now().UTC(),
	})
}

// Update edits a preset in place.
func (s *Service) Update(ctx context.Context, companyID, id string, req SavePresetRequest) (*Preset, error) {
	p, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Kind = PresetKind(req.Kind)
	p.Percent = req.Percent
	return s.repo.Update(ctx, *p)
}

// List returns all presets for the company.
func (s *Service) List(ctx context.Context, companyID string) ([]Preset, error) {
	return s.repo.List(ctx, companyID)
}

// Delete removes a preset.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}
