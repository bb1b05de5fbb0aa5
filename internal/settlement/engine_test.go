package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

type memorySettlementRepo struct {
	rowProfits  map[string]float64
	claimedBy   map[string]string
	settlements map[string]*Settlement
	pending     map[string]*PendingExpense
}

func newMemorySettlementRepo() *memorySettlementRepo {
	return &memorySettlementRepo{
		rowProfits:  make(map[string]float64),
		claimedBy:   make(map[string]string),
		settlements: make(map[string]*Settlement),
		pending:     make(map[string]*PendingExpense),
	}
}

func (r *memorySettlementRepo) ClaimAndCreate(ctx context.Context, companyID string, rowIDs, pendingExpenseIDs []string, build func(rows []RowProfit) (*Settlement, error)) (*Settlement, error) {
	profits := make([]RowProfit, 0, len(rowIDs))
	for _, id := range rowIDs {
		profit, ok := r.rowProfits[id]
		if !ok {
			return nil, fmt.Errorf("settlement: row %s missing: %w", id, shared.ErrNotFound)
		}
		if owner, claimed := r.claimedBy[id]; claimed {
			return nil, fmt.Errorf("settlement: row %s already claimed by %s: %w", id, owner, shared.ErrConflict)
		}
		profits = append(profits, RowProfit{ID: id, ProfitValue: profit})
	}
	s, err := build(profits)
	if err != nil {
		return nil, err
	}
	r.settlements[s.ID] = s
	for _, id := range rowIDs {
		r.claimedBy[id] = s.ID
	}
	for _, id := range pendingExpenseIDs {
		if exp, ok := r.pending[id]; ok {
			exp.Status = PendingExpenseUsed
			exp.UsedInSettlement = &s.ID
		}
	}
	return s, nil
}

func (r *memorySettlementRepo) Get(ctx context.Context, companyID, id string) (*Settlement, error) {
	s, ok := r.settlements[id]
	if !ok {
		return nil, fmt.Errorf("settlement: %s: %w", id, shared.ErrNotFound)
	}
	return s, nil
}

func (r *memorySettlementRepo) List(ctx context.Context, companyID string) ([]Settlement, error) {
	out := make([]Settlement, 0, len(r.settlements))
	for _, s := range r.settlements {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memorySettlementRepo) Close(ctx context.Context, companyID, id string) error {
	s, ok := r.settlements[id]
	if !ok {
		return fmt.Errorf("settlement: %s: %w", id, shared.ErrNotFound)
	}
	s.Status = StatusClosed
	return nil
}

func (r *memorySettlementRepo) SavePendingExpense(ctx context.Context, exp PendingExpense) (*PendingExpense, error) {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	r.pending[exp.ID] = &exp
	return &exp, nil
}

func (r *memorySettlementRepo) ListPendingExpenses(ctx context.Context, companyID string) ([]PendingExpense, error) {
	out := make([]PendingExpense, 0, len(r.pending))
	for _, exp := range r.pending {
		out = append(out, *exp)
	}
	return out, nil
}

func (r *memorySettlementRepo) DeletePendingExpense(ctx context.Context, companyID, id string) error {
	if _, ok := r.pending[id]; !ok {
		return fmt.Errorf("settlement: pending expense %s: %w", id, shared.ErrNotFound)
	}
	delete(r.pending, id)
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestEngine(repo *memorySettlementRepo) (*Engine, *memoryAudit) {
	audit := &memoryAudit{}
	engine := NewEngine(repo, audit, nil, slog.Default())
	engine.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return engine, audit
}

func TestCreateDistributesProfitAfterSharedExpenses(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	repo.rowProfits["r2"] = 200
	repo.rowProfits["r3"] = 50

	engine, audit := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1", "r2", "r3"},
		Plan: []PlanEntry{
			{ParticipantID: "A", Percent: 60},
			{ParticipantID: "B", Percent: 40},
		},
		Expenses: []Expense{
			{Description: "freight", Value: 50, Kind: ExpenseShared},
			{Description: "advance A", Value: 30, Kind: ExpenseIndividual, ParticipantID: "A"},
		},
	})
	require.NoError(t, err)

	require.InDelta(t, 350.0, s.TotalProfit, 0.001)
	require.InDelta(t, 50.0, s.TotalSharedExpense, 0.001)
	require.InDelta(t, 30.0, s.TotalIndividualExpense, 0.001)
	require.InDelta(t, 300.0, s.Distributable, 0.001)

	require.Len(t, s.Distributions, 2)
	a, b := s.Distributions[0], s.Distributions[1]
	require.InDelta(t, 180.0, a.GrossShare, 0.001)
	require.InDelta(t, 30.0, a.IndividualDeduction, 0.001)
	require.InDelta(t, 150.0, a.NetPayout, 0.001)
	require.InDelta(t, 120.0, b.GrossShare, 0.001)
	require.InDelta(t, 0.0, b.IndividualDeduction, 0.001)
	require.InDelta(t, 120.0, b.NetPayout, 0.001)

	require.Equal(t, StatusOpen, s.Status)
	require.Len(t, audit.logs, 1)
	require.Equal(t, AuditAction, audit.logs[0].Action)
}

func TestCreateRejectsEmptyRowSet(t *testing.T) {
	engine, _ := newTestEngine(newMemorySettlementRepo())

	_, err := engine.Create(context.Background(), "co-1", CreateInput{
		Plan: []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRejectsMissingRow(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	_, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1", "ghost"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.settlements)
	require.Empty(t, repo.claimedBy)
}

func TestCreateRejectsAlreadyClaimedRow(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	repo.rowProfits["r2"] = 60
	engine, _ := newTestEngine(repo)

	first, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.NoError(t, err)

	_, err = engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1", "r2"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.ErrorIs(t, err, shared.ErrConflict)

	// the failed attempt claimed nothing
	require.Len(t, repo.settlements, 1)
	require.Equal(t, first.ID, repo.claimedBy["r1"])
	_, claimed := repo.claimedBy["r2"]
	require.False(t, claimed)
}

func TestCreateOrphanIndividualExpenseDeductsFromNobody(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 400
	engine, _ := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1"},
		Plan: []PlanEntry{
			{ParticipantID: "A", Percent: 50},
			{ParticipantID: "B", Percent: 50},
		},
		Expenses: []Expense{
			{Description: "orphan", Value: 40, Kind: ExpenseIndividual, ParticipantID: "ghost"},
		},
	})
	require.NoError(t, err)

	require.InDelta(t, 40.0, s.TotalIndividualExpense, 0.001)
	require.InDelta(t, 400.0, s.Distributable, 0.001)
	var net float64
	for _, d := range s.Distributions {
		require.InDelta(t, 0.0, d.IndividualDeduction, 0.001)
		net += d.NetPayout
	}
	require.InDelta(t, s.Distributable, net, 0.01)
}

func TestCreateNetPayoutMayGoNegative(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 50}},
		Expenses: []Expense{
			{Description: "big advance", Value: 80, Kind: ExpenseIndividual, ParticipantID: "A"},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, -30.0, s.Distributions[0].NetPayout, 0.001)
}

func TestCreateRejectsNegativeExpense(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	_, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs:   []string{"r1"},
		Plan:     []PlanEntry{{ParticipantID: "A", Percent: 100}},
		Expenses: []Expense{{Description: "bad", Value: -5, Kind: ExpenseShared}},
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateDeduplicatesRowIDs(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1", "r1", "r1"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.NoError(t, err)
	require.Len(t, s.RowIDs, 1)
	require.InDelta(t, 100.0, s.TotalProfit, 0.001)
}

func TestCreatePartialPlanSkipsConservationCheck(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 200
	engine, _ := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 30}},
	})
	require.NoError(t, err)
	require.InDelta(t, 60.0, s.Distributions[0].GrossShare, 0.001)
}

func TestCloseOnlyFlipsStatus(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs: []string{"r1"},
		Plan:   []PlanEntry{{ParticipantID: "A", Percent: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, engine.Close(context.Background(), "co-1", s.ID))

	closed, err := engine.Get(context.Background(), "co-1", s.ID)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)
	require.InDelta(t, s.TotalProfit, closed.TotalProfit, 0.001)
	require.InDelta(t, s.Distributable, closed.Distributable, 0.001)
}

func TestPendingExpenseConsumedWithSettlement(t *testing.T) {
	repo := newMemorySettlementRepo()
	repo.rowProfits["r1"] = 100
	engine, _ := newTestEngine(repo)

	saved, err := engine.SavePendingExpense(context.Background(), "co-1", Expense{
		Description: "rent", Value: 20, Kind: ExpenseShared,
	})
	require.NoError(t, err)
	require.Equal(t, PendingExpenseOpen, saved.Status)

	s, err := engine.Create(context.Background(), "co-1", CreateInput{
		RowIDs:            []string{"r1"},
		Plan:              []PlanEntry{{ParticipantID: "A", Percent: 100}},
		Expenses:          []Expense{{Description: "rent", Value: 20, Kind: ExpenseShared}},
		PendingExpenseIDs: []string{saved.ID},
	})
	require.NoError(t, err)

	list, err := engine.ListPendingExpenses(context.Background(), "co-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, PendingExpenseUsed, list[0].Status)
	require.NotNil(t, list[0].UsedInSettlement)
	require.Equal(t, s.ID, *list[0].UsedInSettlement)
}

func TestSavePendingExpenseRejectsBadKind(t *testing.T) {
	engine, _ := newTestEngine(newMemorySettlementRepo())

	_, err := engine.SavePendingExpense(context.Background(), "co-1", Expense{
		Description: "odd", Value: 10, Kind: "WEIRD",
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestValidatePercentages(t *testing.T) {
	require.NoError(t, ValidatePercentages([]PlanEntry{
		{ParticipantID: "A", Percent: 60},
		{ParticipantID: "B", Percent: 40},
	}))
	require.ErrorIs(t, ValidatePercentages([]PlanEntry{
		{ParticipantID: "A", Percent: 70},
	}), shared.ErrInvalidInput)
}
