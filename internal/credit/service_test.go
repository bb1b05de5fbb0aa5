package credit

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

type memoryCreditRepo struct {
	records   map[string]*CreditRecord
	listCalls int
}

func newMemoryCreditRepo() *memoryCreditRepo {
	return &memoryCreditRepo{records: make(map[string]*CreditRecord)}
}

func (r *memoryCreditRepo) Create(ctx context.Context, rec CreditRecord) (*CreditRecord, error) {
	stored := rec
	r.records[rec.ID] = &stored
	return &rec, nil
}

func (r *memoryCreditRepo) Update(ctx context.Context, rec CreditRecord) (*CreditRecord, error) {
	if _, ok := r.records[rec.ID]; !ok {
		return nil, fmt.Errorf("credit: record %s: %w", rec.ID, shared.ErrNotFound)
	}
	stored := rec
	r.records[rec.ID] = &stored
	return &rec, nil
}

func (r *memoryCreditRepo) Get(ctx context.Context, companyID, id string) (*CreditRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("credit: record %s: %w", id, shared.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

func (r *memoryCreditRepo) List(ctx context.Context, companyID string) ([]CreditRecord, error) {
	r.listCalls++
	out := make([]CreditRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.CompanyID == companyID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("credit: record %s: %w", id, shared.ErrNotFound)
	}
	delete(r.records, id)
	return nil
}

func newTestService(t *testing.T, repo *memoryCreditRepo) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(repo, nil, client, 10*time.Minute, slog.Default())
	svc.now = func() time.Time {
		return time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	}
	return svc, mr
}

func TestServiceCreateAndAccrue(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, _ := newTestService(t, repo)

	rec, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty:       "Marcos",
		Kind:               "LOAN",
		Principal:          1000,
		StartDate:          date(2026, 1, 10),
		InterestEnabled:    true,
		MonthlyRatePercent: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	_, res, err := svc.AccrueRecord(context.Background(), "co-1", rec.ID, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, res.MonthsTotal)
	require.InDelta(t, 1061.21, res.BalanceWithInterest, 0.001)
}

func TestServiceAddPaymentRejectsBeforeOrigination(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, _ := newTestService(t, repo)

	rec, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty: "Ana",
		Kind:         "SALE",
		Principal:    300,
		StartDate:    date(2026, 2, 1),
	})
	require.NoError(t, err)

	_, err = svc.AddPayment(context.Background(), "co-1", rec.ID, AddPaymentRequest{
		Date: date(2026, 1, 15), Amount: 50,
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestServiceAddAndRemovePayment(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, _ := newTestService(t, repo)

	rec, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty: "Ana",
		Kind:         "LOAN",
		Principal:    300,
		StartDate:    date(2026, 1, 1),
	})
	require.NoError(t, err)

	withPayment, err := svc.AddPayment(context.Background(), "co-1", rec.ID, AddPaymentRequest{
		Date: date(2026, 2, 1), Amount: 100,
	})
	require.NoError(t, err)
	require.Len(t, withPayment.Payments, 1)

	removed, err := svc.RemovePayment(context.Background(), "co-1", rec.ID, withPayment.Payments[0].ID)
	require.NoError(t, err)
	require.Empty(t, removed.Payments)

	_, err = svc.RemovePayment(context.Background(), "co-1", rec.ID, "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceTotalsCachesInRedis(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, mr := newTestService(t, repo)

	_, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty:       "Marcos",
		Kind:               "LOAN",
		Principal:          1000,
		StartDate:          date(2026, 1, 10),
		InterestEnabled:    true,
		MonthlyRatePercent: 2,
	})
	require.NoError(t, err)

	totals, err := svc.Totals(context.Background(), "co-1")
	require.NoError(t, err)
	require.InDelta(t, 1061.21, totals.TotalOutstandingWithInterest, 0.001)
	require.True(t, mr.Exists(totalsCacheKey("co-1")))

	calls := repo.listCalls
	again, err := svc.Totals(context.Background(), "co-1")
	require.NoError(t, err)
	require.InDelta(t, totals.TotalOutstandingWithInterest, again.TotalOutstandingWithInterest, 0.001)
	require.Equal(t, calls, repo.listCalls)
}

func TestServiceMutationInvalidatesTotalsCache(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, mr := newTestService(t, repo)

	rec, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty: "Ana",
		Kind:         "LOAN",
		Principal:    500,
		StartDate:    date(2026, 1, 1),
	})
	require.NoError(t, err)

	_, err = svc.Totals(context.Background(), "co-1")
	require.NoError(t, err)
	require.True(t, mr.Exists(totalsCacheKey("co-1")))

	_, err = svc.AddPayment(context.Background(), "co-1", rec.ID, AddPaymentRequest{
		Date: date(2026, 2, 1), Amount: 100,
	})
	require.NoError(t, err)
	require.False(t, mr.Exists(totalsCacheKey("co-1")))

	totals, err := svc.Totals(context.Background(), "co-1")
	require.NoError(t, err)
	require.InDelta(t, 400.0, totals.TotalOutstandingWithInterest, 0.001)
}

func TestServiceUpdatePatchesFields(t *testing.T) {
	repo := newMemoryCreditRepo()
	svc, _ := newTestService(t, repo)

	rec, err := svc.Create(context.Background(), "co-1", CreateCreditRequest{
		Counterparty: "Ana",
		Kind:         "LOAN",
		Principal:    500,
		StartDate:    date(2026, 1, 1),
	})
	require.NoError(t, err)

	newRate := 1.5
	enabled := true
	updated, err := svc.Update(context.Background(), "co-1", rec.ID, UpdateCreditRequest{
		MonthlyRatePercent: &newRate,
		InterestEnabled:    &enabled,
	})
	require.NoError(t, err)
	require.True(t, updated.InterestEnabled)
	require.InDelta(t, 1.5, updated.MonthlyRatePercent, 0.001)
	require.Equal(t, "Ana", updated.Counterparty)
	require.InDelta(t, 500.0, updated.Principal, 0.001)
}
