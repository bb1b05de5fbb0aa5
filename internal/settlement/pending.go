package settlement

import (
	"context"
	"fmt"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// SavePendingExpense stores an expense template for a future settlement.
// Templates referenced by a Create call are flipped to USED inside the same
// transaction that persists the settlement.
func (e *Engine) SavePendingExpense(ctx context.Context, companyID string, exp Expense) (*PendingExpense, error) {
	if companyID == "" {
		return nil, fmt.Errorf("settlement: company scope required: %w", shared.ErrInvalidInput)
	}
	if exp.Value < 0 {
		return nil, fmt.Errorf("settlement: negative pending expense: %w", shared.ErrInvalidInput)
	}
	if exp.Kind != ExpenseShared && exp.Kind != ExpenseIndividual {
		return nil, fmt.Errorf("settlement: unknown expense kind %q: %w", exp.Kind, shared.ErrInvalidInput)
	}
	pending := PendingExpense{
		Expense:   exp,
		CompanyID: companyID,
		Status:    PendingExpenseOpen,
		CreatedAt: e.now(),
	}
	saved, err := e.repo.SavePendingExpense(ctx, pending)
	if err != nil {
		return nil, err
	}
	if e.changes != nil {
		e.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "pending_expenses"})
	}
	return saved, nil
}

// ListPendingExpenses returns every saved template for the company.
func (e *Engine) ListPendingExpenses(ctx context.Context, companyID string) ([]PendingExpense, error) {
	return e.repo.ListPendingExpenses(ctx, companyID)
}

// DeletePendingExpense removes a template that was never consumed.
func (e *Engine) DeletePendingExpense(ctx context.Context, companyID, id string) error {
	if err := e.repo.DeletePendingExpense(ctx, companyID, id); err != nil {
		return err
	}
	if e.changes != nil {
		e.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "pending_expenses"})
	}
	return nil
}
