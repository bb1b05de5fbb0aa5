package salesrows

import (
	"context"
	"fmt"
	"time"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// RepositoryPort defines data access methods for sale rows.
type RepositoryPort interface {
	Create(ctx context.Context, row SaleRow) (*SaleRow, error)
	Update(ctx context.Context, row SaleRow) (*SaleRow, error)
	Get(ctx context.Context, companyID, id string) (*SaleRow, error)
	List(ctx context.Context, companyID string) ([]SaleRow, error)
	ListPendingSettlement(ctx context.Context, companyID string) ([]SaleRow, error)
	Delete(ctx context.Context, companyID, id string) error
}

// ChangePublisher notifies readers after a committed mutation.
type ChangePublisher interface {
	Publish(ctx context.Context, change shared.Change)
}

// Service handles sale-row business logic.
type Service struct {
	repo    RepositoryPort
	changes ChangePublisher
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, changes ChangePublisher) *Service {
	return &Service{repo: repo, changes: changes}
}

// Create stores a new sale row with all derived fields computed.
func (s *Service) Create(ctx context.Context, companyID string, req CreateSaleRowRequest) (*SaleRow, error) {
	if companyID == "" {
		return nil, fmt.Errorf("salesrows: company scope required: %w", shared.ErrInvalidInput)
	}
	now := time.Now().UTC()
	row := SaleRow{
		CompanyID:         companyID,
		OrderDate:         req.OrderDate,
		OrderNumber:       req.OrderNumber,
		WaiverNumber:      req.WaiverNumber,
		Client:            req.Client,
		Product:           req.Product,
		Modality:          req.Modality,
		SaleValue:         req.SaleValue,
		CapitalFeePercent: req.CapitalFeePercent,
		TaxPercent:        req.TaxPercent,
		MerchandiseCost:   req.MerchandiseCost,
		ReceivedDate:      req.ReceivedDate,
		Color:             req.Color,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.PaymentStatus != nil {
		row.PaymentStatus = PaymentStatus(*req.PaymentStatus)
	}
	row.Recompute()

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return created, nil
}

// Update patches an existing row and recomputes its derived fields. The
// settlement linkage is never touched here; only the settlement engine
// assigns it.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateSaleRowRequest) (*SaleRow, error) {
	row, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.OrderDate != nil {
		row.OrderDate = req.OrderDate
	}
	if req.OrderNumber != nil {
		row.OrderNumber = *req.OrderNumber
	}
	if req.WaiverNumber != nil {
		row.WaiverNumber = *req.WaiverNumber
	}
	if req.Client != nil {
		row.Client = *req.Client
	}
	if req.Product != nil {
		row.Product = *req.Product
	}
	if req.Modality != nil {
		row.Modality = *req.Modality
	}
	if req.SaleValue != nil {
		row.SaleValue = *req.SaleValue
	}
	if req.CapitalFeePercent != nil {
		row.CapitalFeePercent = *req.CapitalFeePercent
	}
	if req.TaxPercent != nil {
		row.TaxPercent = *req.TaxPercent
	}
	if req.MerchandiseCost != nil {
		row.MerchandiseCost = *req.MerchandiseCost
	}
	if req.ReceivedDate != nil {
		row.ReceivedDate = req.ReceivedDate
	}
	if req.PaymentStatus != nil {
		row.PaymentStatus = PaymentStatus(*req.PaymentStatus)
	}
	if req.Color != nil {
		row.Color = *req.Color
	}
	row.UpdatedAt = time.Now().UTC()
	row.Recompute()

	updated, err := s.repo.Update(ctx, *row)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return updated, nil
}

// Get returns one row in scope.
func (s *Service) Get(ctx context.Context, companyID, id string) (*SaleRow, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns all rows for the company.
func (s *Service) List(ctx context.Context, companyID string) ([]SaleRow, error) {
	return s.repo.List(ctx, companyID)
}

// PendingForSettlement returns rows received but not yet linked to a
// settlement. Pure query, no mutation.
func (s *Service) PendingForSettlement(ctx context.Context, companyID string) ([]SaleRow, error) {
	return s.repo.ListPendingSettlement(ctx, companyID)
}

// Delete removes a row. Deletion is plain CRUD, unrelated to settlement.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.publish(ctx, companyID)
	return nil
}

func (s *Service) publish(ctx context.Context, companyID string) {
	if s.changes != nil {
		s.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "sale_rows"})
	}
}
