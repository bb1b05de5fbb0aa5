package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

const (
	// AuditAction identifies audit log entries emitted by the engine.
	AuditAction = "settlement_create"
	// AuditEntity describes the audit entity for settlement records.
	AuditEntity = "settlements"

	// rounding tolerance for the distribution conservation check
	sumTolerance = 0.01
)

// RepositoryPort describes the persistence operations required by the engine.
// ClaimAndCreate runs as one atomic unit: it locks the candidate rows, hands
// their profit values to build, persists the settlement build returns, links
// the rows to it and marks the consumed pending expenses, or rolls the whole
// unit back.
type RepositoryPort interface {
	ClaimAndCreate(ctx context.Context, companyID string, rowIDs, pendingExpenseIDs []string, build func(rows []RowProfit) (*Settlement, error)) (*Settlement, error)
	Get(ctx context.Context, companyID, id string) (*Settlement, error)
	List(ctx context.Context, companyID string) ([]Settlement, error)
	Close(ctx context.Context, companyID, id string) error

	SavePendingExpense(ctx context.Context, exp PendingExpense) (*PendingExpense, error)
	ListPendingExpenses(ctx context.Context, companyID string) ([]PendingExpense, error)
	DeletePendingExpense(ctx context.Context, companyID, id string) error
}

// AuditRecorder captures audit events.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ChangePublisher notifies readers after the atomic unit commits.
type ChangePublisher interface {
	Publish(ctx context.Context, change shared.Change)
}

// Engine computes settlements and links the consumed sale rows to them.
type Engine struct {
	repo    RepositoryPort
	audit   AuditRecorder
	changes ChangePublisher
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine wires required dependencies for the settlement engine.
func NewEngine(repo RepositoryPort, audit AuditRecorder, changes ChangePublisher, logger *slog.Logger) *Engine {
	return &Engine{
		repo:    repo,
		audit:   audit,
		changes: changes,
		logger:  logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CreateInput carries everything needed to assemble a settlement.
type CreateInput struct {
	Title             string
	Notes             string
	RowIDs            []string
	Plan              []PlanEntry
	Expenses          []Expense
	PendingExpenseIDs []string
	LastBankReceipt   *BankReceipt
}

// Create computes the settlement for the candidate rows and persists it,
// claiming every row in the same transaction. A row that does not exist in
// scope fails with NotFound; a row already linked to another settlement fails
// with Conflict; either way nothing is written.
func (e *Engine) Create(ctx context.Context, companyID string, input CreateInput) (*Settlement, error) {
	if e == nil || e.repo == nil {
		return nil, fmt.Errorf("settlement engine not initialised")
	}
	if companyID == "" {
		return nil, fmt.Errorf("settlement: company scope required: %w", shared.ErrInvalidInput)
	}
	rowIDs := dedupe(input.RowIDs)
	if len(rowIDs) == 0 {
		return nil, fmt.Errorf("settlement: empty candidate row set: %w", shared.ErrInvalidInput)
	}
	for _, entry := range input.Plan {
		if entry.ParticipantID == "" {
			return nil, fmt.Errorf("settlement: distribution plan entry missing participant id: %w", shared.ErrInvalidInput)
		}
	}
	for _, exp := range input.Expenses {
		if exp.Value < 0 {
			return nil, fmt.Errorf("settlement: negative expense %q: %w", exp.Description, shared.ErrInvalidInput)
		}
	}

	created, err := e.repo.ClaimAndCreate(ctx, companyID, rowIDs, input.PendingExpenseIDs, func(rows []RowProfit) (*Settlement, error) {
		return e.build(companyID, rowIDs, rows, input)
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, created)
	if e.changes != nil {
		e.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "settlements"})
		e.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "sale_rows"})
	}
	e.log().Info("settlement created",
		slog.String("settlement_id", created.ID),
		slog.Int("rows", len(created.RowIDs)),
		slog.Float64("distributable", created.Distributable))
	return created, nil
}

// build derives every financial figure of the settlement from the locked
// rows. Called inside the claim transaction.
func (e *Engine) build(companyID string, rowIDs []string, rows []RowProfit, input CreateInput) (*Settlement, error) {
	var totalProfit float64
	for _, r := range rows {
		totalProfit += r.ProfitValue
	}
	totalProfit = round(totalProfit)

	var totalShared, totalIndividual float64
	individualByParticipant := make(map[string]float64)
	expenses := make([]Expense, 0, len(input.Expenses))
	for _, exp := range input.Expenses {
		if exp.ID == "" {
			exp.ID = uuid.NewString()
		}
		switch exp.Kind {
		case ExpenseShared:
			totalShared += exp.Value
		case ExpenseIndividual:
			totalIndividual += exp.Value
			if exp.ParticipantID != "" {
				individualByParticipant[exp.ParticipantID] += exp.Value
			}
		default:
			return nil, fmt.Errorf("settlement: unknown expense kind %q: %w", exp.Kind, shared.ErrInvalidInput)
		}
		expenses = append(expenses, exp)
	}

	distributable := round(totalProfit - totalShared)

	distributions := make([]Distribution, 0, len(input.Plan))
	var grossSum, percentSum float64
	for _, entry := range input.Plan {
		gross := round(distributable * (entry.Percent / 100))
		deduction := round(individualByParticipant[entry.ParticipantID])
		distributions = append(distributions, Distribution{
			ParticipantID:       entry.ParticipantID,
			Percent:             entry.Percent,
			GrossShare:          gross,
			IndividualDeduction: deduction,
			// not clamped: a participant can owe money back
			NetPayout: round(gross - deduction),
		})
		grossSum += gross
		percentSum += entry.Percent
	}

	// Conservation guard. Only meaningful when the plan covers the whole
	// pool; partial plans are explicitly permitted and skip the check.
	if math.Abs(percentSum-100) <= sumTolerance && math.Abs(grossSum-distributable) > sumTolerance {
		return nil, fmt.Errorf("settlement: distribution sum %.2f != distributable %.2f: %w",
			grossSum, distributable, shared.ErrInconsistent)
	}

	now := e.now()
	return &Settlement{
		ID:                     uuid.NewString(),
		CompanyID:              companyID,
		Date:                   now,
		Title:                  input.Title,
		Notes:                  input.Notes,
		RowIDs:                 rowIDs,
		TotalProfit:            totalProfit,
		TotalSharedExpense:     round(totalShared),
		TotalIndividualExpense: round(totalIndividual),
		Distributable:          distributable,
		Distributions:          distributions,
		Expenses:               expenses,
		LastBankReceipt:        input.LastBankReceipt,
		Status:                 StatusOpen,
		CreatedAt:              now,
	}, nil
}

// Close flips an open settlement to CLOSED, touching no financial field.
func (e *Engine) Close(ctx context.Context, companyID, id string) error {
	if err := e.repo.Close(ctx, companyID, id); err != nil {
		return err
	}
	if e.changes != nil {
		e.changes.Publish(ctx, shared.Change{CompanyID: companyID, Entity: "settlements"})
	}
	return nil
}

// Get returns one settlement in scope.
func (e *Engine) Get(ctx context.Context, companyID, id string) (*Settlement, error) {
	return e.repo.Get(ctx, companyID, id)
}

// List returns the settlement history for the company, newest first.
func (e *Engine) List(ctx context.Context, companyID string) ([]Settlement, error) {
	return e.repo.List(ctx, companyID)
}

// ValidatePercentages is the opt-in helper for callers that want the plan to
// cover exactly 100%. The engine itself never enforces this.
func ValidatePercentages(plan []PlanEntry) error {
	var sum float64
	for _, entry := range plan {
		sum += entry.Percent
	}
	if math.Abs(sum-100) > sumTolerance {
		return fmt.Errorf("settlement: percentages sum to %.2f, expected 100: %w", sum, shared.ErrInvalidInput)
	}
	return nil
}

func (e *Engine) recordAudit(ctx context.Context, s *Settlement) {
	if e == nil || e.audit == nil {
		return
	}
	_ = e.audit.Record(ctx, shared.AuditLog{
		CompanyID: s.CompanyID,
		Action:    AuditAction,
		Entity:    AuditEntity,
		EntityID:  s.ID,
		Meta: map[string]any{
			"rows":          len(s.RowIDs),
			"total_profit":  s.TotalProfit,
			"distributable": s.Distributable,
			"participants":  len(s.Distributions),
		},
		At: e.now(),
	})
}

func (e *Engine) log() *slog.Logger {
	if e != nil && e.logger != nil {
		return e.logger.With(slog.String("component", "settlement_engine"))
	}
	return slog.Default().With(slog.String("component", "settlement_engine"))
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
