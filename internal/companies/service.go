package companies

import (
	"context"
	"time"
)

// RepositoryPort defines data access methods for companies.
type RepositoryPort interface {
	Create(ctx context.Context, c Company) (*Company, error)
	Update(ctx context.Context, c Company) (*Company, error)
	Get(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	Delete(ctx context.Context, id string) error
}

// Service handles tenant registry logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a company, active by default.
func (s *Service) Create(ctx context.Context, req SaveCompanyRequest) (*Company, error) {
	c := Company{
		Name:      req.Name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	return s.repo.Create(ctx, c)
}

// Update renames a company or toggles its active flag.
func (s *Service) Update(ctx context.Context, id string, req SaveCompanyRequest) (*Company, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	if req.Active != nil {
		c.Active = *req.Active
	}
	return s.repo.Update(ctx, *c)
}

// Get returns one company.
func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	return s.repo.Get(ctx, id)
}

// List returns every company.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

// Delete removes a company.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
