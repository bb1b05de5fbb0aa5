package participants

import (
	"context"
	"fmt"
	"time"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// RepositoryPort defines data access methods for participants.
type RepositoryPort interface {
	Create(ctx context.Context, p Participant) (*Participant, error)
	Update(ctx context.Context, p Participant) (*Participant, error)
	Get(ctx context.Context, companyID, id string) (*Participant, error)
	List(ctx context.Context, companyID string) ([]Participant, error)
	Delete(ctx context.Context, companyID, id string) error
}

// Service handles participant registry logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a participant, active by default.
func (s *Service) Create(ctx context.Context, companyID string, req SaveParticipantRequest) (*Participant, error) {
	if companyID == "" {
		return nil, fmt.Errorf("participants: company scope required: %w", shared.ErrInvalidInput)
	}
	p := Participant{
		CompanyID:      companyID,
		Name:           req.Name,
		Active:         true,
		DefaultPercent: req.DefaultPercent,
		CreatedAt:      time.Now().UTC(),
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	return s.repo.Create(ctx, p)
}

// Update edits a participant in place.
func (s *Service) Update(ctx context.Context, companyID, id string, req SaveParticipantRequest) (*Participant, error) {
	p, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.DefaultPercent != nil {
		p.DefaultPercent = req.DefaultPercent
	}
	return s.repo.Update(ctx, *p)
}

// List returns all participants for the company.
func (s *Service) List(ctx context.Context, companyID string) ([]Participant, error) {
	return s.repo.List(ctx, companyID)
}

// Delete removes a participant.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}
