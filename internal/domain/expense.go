package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense represents a single payment recorded in a shared ledger.
// Once attached, LedgerID names the one ledger that owns it.
type Expense struct {
	ID          uuid.UUID
	LedgerID    uuid.UUID
	Amount      decimal.Decimal // Non-negative, two fractional digits
	Date        time.Time       // Calendar date, time of day is dropped
	Category    Category
	PayerID     uuid.UUID
	Description string
}

// ExpenseChanges holds the optional field updates applied by SharedLedger.UpdateExpense.
// Nil fields are left untouched.
type ExpenseChanges struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *Category
	PayerID     *uuid.UUID
	Description *string
}

// NewExpense creates an unattached expense with a fresh ID.
// The expense becomes part of a ledger through SharedLedger.AddExpense.
func NewExpense(amount decimal.Decimal, date time.Time, category Category, payerID uuid.UUID, description string) (*Expense, error) {
	e := &Expense{
		ID:          uuid.New(),
		Amount:      amount,
		Date:        DateOf(date),
		Category:    category,
		PayerID:     payerID,
		Description: strings.TrimSpace(description),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate ensures the expense adheres to domain rules
func (e *Expense) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("expense_id", "cannot be empty")
	}
	if e.Amount.IsNegative() {
		return NewValidationError("amount", "cannot be negative")
	}
	if !e.Amount.Equal(e.Amount.Round(2)) {
		return NewValidationError("amount", "cannot have more than two decimal places")
	}
	if e.PayerID == uuid.Nil {
		return NewValidationError("payer_id", "cannot be empty")
	}
	if e.Date.IsZero() {
		return NewValidationError("date", "cannot be empty")
	}
	return nil
}

// WithChanges returns a copy of the expense with the non-nil changes applied.
// The result is not validated.
func (e Expense) WithChanges(c ExpenseChanges) Expense {
	e.apply(c)
	return e
}

func (e *Expense) apply(c ExpenseChanges) {
	if c.Amount != nil {
		e.Amount = *c.Amount
	}
	if c.Date != nil {
		e.Date = DateOf(*c.Date)
	}
	if c.Category != nil {
		e.Category = *c.Category
	}
	if c.PayerID != nil {
		e.PayerID = *c.PayerID
	}
	if c.Description != nil {
		e.Description = strings.TrimSpace(*c.Description)
	}
}

// DateOf truncates t to its calendar date in UTC
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
