package expense

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/metrics"
	"github.com/gestiongastos/backend/internal/validation"
)

// CategoryResolver turns a user-supplied category name into a stored category
type CategoryResolver interface {
	GetOrCreateCategory(ctx context.Context, name string) (domain.Category, error)
}

// AlertChecker evaluates a person's alerts after their spend changed
type AlertChecker interface {
	CheckAlerts(ctx context.Context, personID uuid.UUID) ([]domain.Notification, error)
}

// LogExpenseInput represents the input for logging an expense.
// A zero Date means today.
type LogExpenseInput struct {
	LedgerID    uuid.UUID       `json:"ledger_id" validate:"required"`
	PayerID     uuid.UUID       `json:"payer_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
}

// UpdateExpenseInput represents the changes applied to a logged expense.
// Nil fields are left untouched; a LedgerID moves the expense to that ledger.
type UpdateExpenseInput struct {
	ExpenseID   uuid.UUID        `json:"expense_id" validate:"required"`
	LedgerID    *uuid.UUID       `json:"ledger_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Category    *string          `json:"category"`
	PayerID     *uuid.UUID       `json:"payer_id"`
	Description *string          `json:"description"`
}

// ExpenseService handles the expense lifecycle inside shared ledgers
type ExpenseService struct {
	LedgerRepo domain.LedgerRepository
	Categories CategoryResolver
	Alerts     AlertChecker // optional
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger

	now func() time.Time
}

// NewExpenseService creates a new ExpenseService instance
func NewExpenseService(ledgerRepo domain.LedgerRepository, categories CategoryResolver, alerts AlertChecker, m *metrics.Metrics, logger zerolog.Logger) *ExpenseService {
	return &ExpenseService{
		LedgerRepo: ledgerRepo,
		Categories: categories,
		Alerts:     alerts,
		Metrics:    m,
		Logger:     logger,
		now:        time.Now,
	}
}

// LogExpense records an expense in a ledger
// Logic:
//  1. Validate input: non-negative amount, date not in the future
//  2. Fetch the ledger and resolve the category (created when missing)
//  3. Attach the expense (payer must be a participant), which recomputes balances
//  4. Save the ledger and check the alerts of every participant
func (s *ExpenseService) LogExpense(ctx context.Context, input LogExpenseInput) (*domain.Expense, error) {
	// 1. Validate input
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, domain.NewValidationError("amount", "cannot be negative")
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	if err := s.checkDate(date); err != nil {
		return nil, err
	}

	// 2. Ledger and category
	ledger, err := s.LedgerRepo.GetByID(ctx, input.LedgerID)
	if err != nil {
		return nil, err
	}
	category, err := s.Categories.GetOrCreateCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	// 3. Attach
	e, err := domain.NewExpense(input.Amount, date, category, input.PayerID, input.Description)
	if err != nil {
		return nil, err
	}
	if err := ledger.AddExpense(e); err != nil {
		return nil, err
	}
	s.Metrics.IncRecalculation()

	// 4. Save and check alerts
	if err := s.LedgerRepo.Save(ctx, ledger); err != nil {
		return nil, err
	}
	s.Metrics.IncExpenseLogged()

	s.Logger.Info().
		Str("expense_id", e.ID.String()).
		Str("ledger_id", ledger.ID.String()).
		Str("amount", e.Amount.StringFixed(2)).
		Msg("expense logged")

	s.checkAlerts(ctx, ledger)
	return e, nil
}

// UpdateExpense changes a logged expense, possibly moving it to another ledger.
// When the payer is not a member of the target ledger the expense stays
// unchanged in its original ledger and a validation error is returned.
// Logic:
//  1. Find the owning ledger and resolve the requested changes
//  2. Same ledger: update in place
//  3. Other ledger: check against the target, then detach, apply and attach
//  4. Save every touched ledger and check alerts
func (s *ExpenseService) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// 1. Owning ledger and changes
	source, err := s.LedgerRepo.GetByExpenseID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}
	changes, err := s.resolveChanges(ctx, input)
	if err != nil {
		return nil, err
	}

	// 2. Same ledger
	if input.LedgerID == nil || *input.LedgerID == source.ID {
		updated, err := source.UpdateExpense(input.ExpenseID, changes)
		if err != nil {
			return nil, err
		}
		s.Metrics.IncRecalculation()
		if err := s.LedgerRepo.Save(ctx, source); err != nil {
			return nil, err
		}
		s.logUpdate(updated, source.ID)
		s.checkAlerts(ctx, source)
		return &updated, nil
	}

	// 3. Move to another ledger
	target, err := s.LedgerRepo.GetByID(ctx, *input.LedgerID)
	if err != nil {
		return nil, err
	}

	original, ok := source.Expense(input.ExpenseID)
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", input.ExpenseID, domain.ErrNotFound)
	}
	moved := original.WithChanges(changes)
	moved.LedgerID = uuid.Nil
	if err := target.CheckExpense(moved); err != nil {
		return nil, err
	}

	source.RemoveExpense(input.ExpenseID)
	if err := target.AddExpense(&moved); err != nil {
		return nil, err
	}
	// Both ledgers were recomputed
	s.Metrics.IncRecalculation()
	s.Metrics.IncRecalculation()

	// 4. Save both ledgers
	if err := s.LedgerRepo.Save(ctx, source); err != nil {
		return nil, err
	}
	if err := s.LedgerRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	s.logUpdate(moved, target.ID)
	s.checkAlerts(ctx, source, target)
	return &moved, nil
}

// DeleteExpense removes an expense from its ledger
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	ledger, err := s.LedgerRepo.GetByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	removed, ok := ledger.RemoveExpense(expenseID)
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
	}
	s.Metrics.IncRecalculation()

	if err := s.LedgerRepo.Save(ctx, ledger); err != nil {
		return nil, err
	}

	s.Logger.Info().
		Str("expense_id", expenseID.String()).
		Str("ledger_id", ledger.ID.String()).
		Msg("expense deleted")
	return &removed, nil
}

// ListExpenses returns every expense of every ledger the person takes part in,
// newest first
func (s *ExpenseService) ListExpenses(ctx context.Context, personID uuid.UUID) ([]domain.Expense, error) {
	ledgers, err := s.LedgerRepo.ListByParticipant(ctx, personID)
	if err != nil {
		return nil, err
	}

	var expenses []domain.Expense
	for _, ledger := range ledgers {
		expenses = append(expenses, ledger.Expenses()...)
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}

func (s *ExpenseService) resolveChanges(ctx context.Context, input UpdateExpenseInput) (domain.ExpenseChanges, error) {
	changes := domain.ExpenseChanges{
		Amount:      input.Amount,
		PayerID:     input.PayerID,
		Description: input.Description,
	}

	if input.Amount != nil && input.Amount.IsNegative() {
		return changes, domain.NewValidationError("amount", "cannot be negative")
	}
	if input.Date != nil {
		if err := s.checkDate(*input.Date); err != nil {
			return changes, err
		}
		changes.Date = input.Date
	}
	if input.Category != nil && *input.Category != "" {
		category, err := s.Categories.GetOrCreateCategory(ctx, *input.Category)
		if err != nil {
			return changes, err
		}
		changes.Category = &category
	}
	return changes, nil
}

func (s *ExpenseService) checkDate(date time.Time) error {
	if domain.DateOf(date).After(domain.DateOf(s.now())) {
		return domain.NewValidationError("date", "cannot be in the future")
	}
	return nil
}

// checkAlerts evaluates the alerts of every participant of the given ledgers.
// Failures are logged; the expense change itself already succeeded.
func (s *ExpenseService) checkAlerts(ctx context.Context, ledgers ...*domain.SharedLedger) {
	if s.Alerts == nil {
		return
	}

	seen := make(map[uuid.UUID]bool)
	for _, ledger := range ledgers {
		for _, p := range ledger.Participants() {
			if seen[p.Person.ID] {
				continue
			}
			seen[p.Person.ID] = true

			if _, err := s.Alerts.CheckAlerts(ctx, p.Person.ID); err != nil {
				s.Logger.Warn().Err(err).Str("person_id", p.Person.ID.String()).Msg("alert check failed")
			}
		}
	}
}

func (s *ExpenseService) logUpdate(e domain.Expense, ledgerID uuid.UUID) {
	s.Logger.Info().
		Str("expense_id", e.ID.String()).
		Str("ledger_id", ledgerID.String()).
		Str("amount", e.Amount.StringFixed(2)).
		Msg("expense updated")
}
