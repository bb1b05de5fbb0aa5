package settlement

import "time"

// ExpenseInput is one expense attached at creation time.
type ExpenseInput struct {
	Description   string  `json:"description" validate:"required"`
	Value         float64 `json:"value" validate:"gte=0"`
	Kind          string  `json:"kind" validate:"required,oneof=SHARED INDIVIDUAL"`
	ParticipantID string  `json:"participant_id,omitempty"`
}

// BankReceiptInput mirrors BankReceipt for request bodies.
type BankReceiptInput struct {
	Name   string     `json:"name,omitempty"`
	Amount float64    `json:"amount,omitempty" validate:"gte=0"`
	Date   *time.Time `json:"date,omitempty"`
	Bank   string     `json:"bank,omitempty"`
}

// CreateSettlementRequest is the payload for POST /settlements.
type CreateSettlementRequest struct {
	Title             string            `json:"title,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	RowIDs            []string          `json:"row_ids" validate:"required,min=1,dive,required"`
	Plan              []PlanEntry       `json:"plan" validate:"dive"`
	Expenses          []ExpenseInput    `json:"expenses" validate:"dive"`
	PendingExpenseIDs []string          `json:"pending_expense_ids,omitempty"`
	LastBankReceipt   *BankReceiptInput `json:"last_bank_receipt,omitempty"`
}

// PendingExpenseRequest is the payload for saving an expense template.
type PendingExpenseRequest struct {
	ID            string  `json:"id,omitempty"`
	Description   string  `json:"description" validate:"required"`
	Value         float64 `json:"value" validate:"gte=0"`
	Kind          string  `json:"kind" validate:"required,oneof=SHARED INDIVIDUAL"`
	ParticipantID string  `json:"participant_id,omitempty"`
}

func (req CreateSettlementRequest) toInput() CreateInput {
	input := CreateInput{
		Title:             req.Title,
		Notes:             req.Notes,
		RowIDs:            req.RowIDs,
		Plan:              req.Plan,
		PendingExpenseIDs: req.PendingExpenseIDs,
	}
	for _, exp := range req.Expenses {
		input.Expenses = append(input.Expenses, Expense{
			Description:   exp.Description,
			Value:         exp.Value,
			Kind:          ExpenseKind(exp.Kind),
			ParticipantID: exp.ParticipantID,
		})
	}
	if req.LastBankReceipt != nil {
		input.LastBankReceipt = &BankReceipt{
			Name:   req.LastBankReceipt.Name,
			Amount: req.LastBankReceipt.Amount,
			Date:   req.LastBankReceipt.Date,
			Bank:   req.LastBankReceipt.Bank,
		}
	}
	return input
}

func (req PendingExpenseRequest) toExpense() Expense {
	return Expense{
		ID:            req.ID,
		Description:   req.Description,
		Value:         req.Value,
		Kind:          ExpenseKind(req.Kind),
		ParticipantID: req.ParticipantID,
	}
}
