package vouchers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

type memoryVoucherRepo struct {
	movements []Movement
}

func (r *memoryVoucherRepo) balance(companyID, client string) float64 {
	var balance float64
	for _, m := range r.movements {
		if m.CompanyID != companyID || m.Client != client {
			continue
		}
		if m.Kind == KindCredit {
			balance += m.Value
		} else {
			balance -= m.Value
		}
	}
	if balance < 0 {
		return 0
	}
	return balance
}

func (r *memoryVoucherRepo) Insert(ctx context.Context, m Movement) (*Movement, error) {
	r.movements = append(r.movements, m)
	return &m, nil
}

func (r *memoryVoucherRepo) InsertDebit(ctx context.Context, m Movement) (*Movement, error) {
	if r.balance(m.CompanyID, m.Client) < m.Value {
		return nil, fmt.Errorf("vouchers: debit exceeds balance: %w", shared.ErrConflict)
	}
	r.movements = append(r.movements, m)
	return &m, nil
}

func (r *memoryVoucherRepo) ListByClient(ctx context.Context, companyID, client string) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.CompanyID == companyID && m.Client == client {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryVoucherRepo) List(ctx context.Context, companyID string) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryVoucherRepo) BalanceFor(ctx context.Context, companyID, client string) (float64, error) {
	return r.balance(companyID, client), nil
}

func (r *memoryVoucherRepo) Balances(ctx context.Context, companyID string) ([]Balance, error) {
	seen := make(map[string]bool)
	var out []Balance
	for _, m := range r.movements {
		if m.CompanyID != companyID || seen[m.Client] {
			continue
		}
		seen[m.Client] = true
		out = append(out, Balance{Client: m.Client, Balance: r.balance(companyID, m.Client)})
	}
	return out, nil
}

func (r *memoryVoucherRepo) Delete(ctx context.Context, companyID, id string) error {
	for i, m := range r.movements {
		if m.ID == id && m.CompanyID == companyID {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("vouchers: movement %s: %w", id, shared.ErrNotFound)
}

func newTestVoucherService(repo *memoryVoucherRepo) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestAddMovementCreditAndDebit(t *testing.T) {
	repo := &memoryVoucherRepo{}
	svc := newTestVoucherService(repo)

	_, err := svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "CREDIT", Value: 150,
	})
	require.NoError(t, err)

	_, err = svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "DEBIT", Value: 100,
	})
	require.NoError(t, err)

	_, balance, err := svc.Statement(context.Background(), "co-1", "Joana")
	require.NoError(t, err)
	require.InDelta(t, 50.0, balance, 0.001)
}

func TestAddMovementRejectsDebitOverBalance(t *testing.T) {
	repo := &memoryVoucherRepo{}
	svc := newTestVoucherService(repo)

	_, err := svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "CREDIT", Value: 40,
	})
	require.NoError(t, err)

	_, err = svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "DEBIT", Value: 60,
	})
	require.ErrorIs(t, err, shared.ErrConflict)

	_, balance, err := svc.Statement(context.Background(), "co-1", "Joana")
	require.NoError(t, err)
	require.InDelta(t, 40.0, balance, 0.001)
}

func TestAddMovementRejectsUnknownKind(t *testing.T) {
	svc := newTestVoucherService(&memoryVoucherRepo{})

	_, err := svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "TRANSFER", Value: 10,
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestBalancesScopedByCompany(t *testing.T) {
	repo := &memoryVoucherRepo{}
	svc := newTestVoucherService(repo)

	_, err := svc.AddMovement(context.Background(), "co-1", CreateMovementRequest{
		Client: "Joana", Kind: "CREDIT", Value: 30,
	})
	require.NoError(t, err)
	_, err = svc.AddMovement(context.Background(), "co-2", CreateMovementRequest{
		Client: "Joana", Kind: "CREDIT", Value: 99,
	})
	require.NoError(t, err)

	balances, err := svc.Balances(context.Background(), "co-1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.InDelta(t, 30.0, balances[0].Balance, 0.001)
}
