package credit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// RepositoryPort describes the persistence operations required by the service.
type RepositoryPort interface {
	Create(ctx context.Context, rec CreditRecord) (*CreditRecord, error)
	Update(ctx context.Context, rec CreditRecord) (*CreditRecord, error)
	Get(ctx context.Context, companyID, id string) (*CreditRecord, error)
	List(ctx context.Context, companyID string) ([]CreditRecord, error)
	Delete(ctx context.Context, companyID, id string) error
}

// ChangePublisher notifies readers after a committed mutation.
type ChangePublisher interface {
	Publish(ctx context.Context, change shared.Change)
}

// Service owns the credit ledger: record CRUD, the payment history and the
// derived accrual reads. Portfolio totals are cached in Redis and collapsed
// through singleflight since every dashboard hit recomputes the whole book.
type Service struct {
	repo     RepositoryPort
	changes  ChangePublisher
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

// NewService wires the credit service. cache may be nil; totals then always
// recompute.
func NewService(repo RepositoryPort, changes ChangePublisher, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		changes:  changes,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Create validates and persists a new record.
func (s *Service) Create(ctx context.Context, companyID string, req CreateCreditRequest) (*CreditRecord, error) {
	if companyID == "" {
		return nil, fmt.Errorf("credit: company scope required: %w", shared.ErrInvalidInput)
	}
	now := s.now()
	rec := CreditRecord{
		ID:                 uuid.NewString(),
		CompanyID:          companyID,
		Counterparty:       req.Counterparty,
		Kind:               Kind(req.Kind),
		Description:        req.Description,
		Principal:          req.Principal,
		StartDate:          req.StartDate,
		InterestEnabled:    req.InterestEnabled,
		MonthlyRatePercent: req.MonthlyRatePercent,
		Payments:           []PartialPayment{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return created, nil
}

// Update patches mutable fields. The payment history is only changed through
// AddPayment and RemovePayment.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateCreditRequest) (*CreditRecord, error) {
	rec, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Counterparty != nil {
		rec.Counterparty = *req.Counterparty
	}
	if req.Kind != nil {
		rec.Kind = Kind(*req.Kind)
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.Principal != nil {
		rec.Principal = *req.Principal
	}
	if req.StartDate != nil {
		rec.StartDate = *req.StartDate
	}
	if req.InterestEnabled != nil {
		rec.InterestEnabled = *req.InterestEnabled
	}
	if req.MonthlyRatePercent != nil {
		rec.MonthlyRatePercent = *req.MonthlyRatePercent
	}
	rec.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, *rec)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return updated, nil
}

// Get returns one record in scope.
func (s *Service) Get(ctx context.Context, companyID, id string) (*CreditRecord, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns every record for the company.
func (s *Service) List(ctx context.Context, companyID string) ([]CreditRecord, error) {
	return s.repo.List(ctx, companyID)
}

// Delete removes a record and its payment history.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.publish(ctx, companyID)
	return nil
}

// AddPayment appends a repayment. A payment dated before origination is
// rejected, not clamped.
func (s *Service) AddPayment(ctx context.Context, companyID, id string, req AddPaymentRequest) (*CreditRecord, error) {
	rec, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Date.Before(rec.StartDate) {
		return nil, fmt.Errorf("credit: payment dated before origination: %w", shared.ErrInvalidInput)
	}
	rec.Payments = append(rec.Payments, PartialPayment{
		ID:     uuid.NewString(),
		Date:   req.Date,
		Amount: req.Amount,
		Note:   req.Note,
	})
	rec.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, *rec)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return updated, nil
}

// RemovePayment drops one payment by id.
func (s *Service) RemovePayment(ctx context.Context, companyID, id, paymentID string) (*CreditRecord, error) {
	rec, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	kept := rec.Payments[:0]
	found := false
	for _, p := range rec.Payments {
		if p.ID == paymentID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return nil, fmt.Errorf("credit: payment %s: %w", paymentID, shared.ErrNotFound)
	}
	rec.Payments = kept
	rec.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, *rec)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, companyID)
	return updated, nil
}

// AccrueRecord derives the record's state as of asOf. Zero asOf means now.
func (s *Service) AccrueRecord(ctx context.Context, companyID, id string, asOf time.Time) (*CreditRecord, *AccrualResult, error) {
	rec, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	res, err := Accrue(*rec, asOf)
	if err != nil {
		return nil, nil, err
	}
	return rec, &res, nil
}

// Totals aggregates the whole book as of now, serving from the Redis cache
// when warm and collapsing concurrent recomputes through singleflight.
func (s *Service) Totals(ctx context.Context, companyID string) (*PortfolioTotals, error) {
	if companyID == "" {
		return nil, fmt.Errorf("credit: company scope required: %w", shared.ErrInvalidInput)
	}
	key := totalsCacheKey(companyID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var totals PortfolioTotals
			if err := json.Unmarshal(cached, &totals); err == nil {
				return &totals, nil
			}
		}
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		records, err := s.repo.List(ctx, companyID)
		if err != nil {
			return nil, err
		}
		totals := Aggregate(records, s.now())
		if s.cache != nil {
			payload, _ := json.Marshal(totals)
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.log().Warn("cache portfolio totals", slog.Any("error", err))
			}
		}
		return &totals, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PortfolioTotals), nil
}

// WarmTotals recomputes and caches the portfolio totals, bypassing any warm
// entry. Used by the background snapshot job.
func (s *Service) WarmTotals(ctx context.Context, companyID string) (*PortfolioTotals, error) {
	records, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	totals := Aggregate(records, s.now())
	if s.cache != nil {
		payload, _ := json.Marshal(totals)
		if err := s.cache.Set(ctx, totalsCacheKey(companyID), payload, s.cacheTTL).Err(); err != nil {
			return nil, fmt.Errorf("credit: warm totals cache: %w", err)
		}
	}
	return &totals, nil
}

func (s *Service) publish(ctx context.Context, companyID string) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, totalsCacheKey(companyID)).Err(); err != nil {
			s.log().Warn("invalidate totals cache", slog.Any("error", err))
		}
	}
	if s.changes != nil {
		s.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "credit_records"})
	}
}

func (s *Service) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String("component", "credit_service"))
	}
	return slog.Default().With(slog.String("component", "credit_service"))
}

func totalsCacheKey(companyID string) string {
	return "credit:totals:" + companyID
}
