package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// RepositoryPort defines data access methods for voucher movements.
type RepositoryPort interface {
	Insert(ctx context.Context, m Movement) (*Movement, error)
	InsertDebit(ctx context.Context, m Movement) (*Movement, error)
	ListByClient(ctx context.Context, companyID, client string) ([]Movement, error)
	List(ctx context.Context, companyID string) ([]Movement, error)
	BalanceFor(ctx context.Context, companyID, client string) (float64, error)
	Balances(ctx context.Context, companyID string) ([]Balance, error)
	Delete(ctx context.Context, companyID, id string) error
}

// ChangePublisher notifies readers after a committed mutation.
type ChangePublisher interface {
	Publish(ctx context.Context, change shared.Change)
}

// Service handles client voucher balances. A debit that exceeds the client's
// available balance is rejected; balances never go negative.
type Service struct {
	repo    RepositoryPort
	changes ChangePublisher
	now     func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, changes ChangePublisher) *Service {
	return &Service{
		repo:    repo,
		changes: changes,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AddMovement records a credit or a balance-checked debit.
func (s *Service) AddMovement(ctx context.Context, companyID string, req CreateMovementRequest) (*Movement, error) {
	if companyID == "" {
		return nil, fmt.Errorf("vouchers: company scope required: %w", shared.ErrInvalidInput)
	}
	now := s.now()
	m := Movement{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Client:      req.Client,
		Kind:        MovementKind(req.Kind),
		Value:       req.Value,
		Description: req.Description,
		Date:        req.Date,
		CreatedAt:   now,
	}
	if m.Date.IsZero() {
		m.Date = now
	}
	var (
		created *Movement
		err     error
	)
	switch m.Kind {
	case KindCredit:
		created, err = s.repo.Insert(ctx, m)
	case KindDebit:
		created, err = s.repo.InsertDebit(ctx, m)
	default:
		return nil, fmt.Errorf("vouchers: unknown movement kind %q: %w", m.Kind, shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return created, nil
}

// Statement returns a client's movements and current balance.
func (s *Service) Statement(ctx context.Context, companyID, client string) ([]Movement, float64, error) {
	movements, err := s.repo.ListByClient(ctx, companyID, client)
	if err != nil {
		return nil, 0, err
	}
	balance, err := s.repo.BalanceFor(ctx, companyID, client)
	if err != nil {
		return nil, 0, err
	}
	return movements, balance, nil
}

// List returns every movement for the company.
func (s *Service) List(ctx context.Context, companyID string) ([]Movement, error) {
	return s.repo.List(ctx, companyID)
}

// Balances returns the per-client balance sheet.
func (s *Service) Balances(ctx context.Context, companyID string) ([]Balance, error) {
	return s.repo.Balances(ctx, companyID)
}

// Delete removes a movement.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.publish(ctx, companyID)
	return nil
}

func (s *Service) publish(ctx context.Context, companyID string) {
	if s.changes != nil {
		s.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "voucher_movements"})
	}
}
