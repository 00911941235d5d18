package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PercentageTolerance is the allowed distance from 100 when validating a percentage set
const PercentageTolerance = 0.001

// Participant is a person's share and running balance inside one ledger.
// A positive balance means the others owe this person money.
type Participant struct {
	Person     Person
	Percentage float64 // 0..100
	Balance    decimal.Decimal
}

// SharedLedger is a group account with a fixed set of participants and running balances.
// Membership is fixed at creation. Balances are recomputed from the full expense
// history on every add or remove, so the sum of all balances is always zero.
//
// A SharedLedger is not safe for concurrent use; callers serialize mutations.
type SharedLedger struct {
	ID               uuid.UUID
	Name             string
	participants     []*Participant
	expenses         []*Expense
	percentagesFixed bool
}

// NewSharedLedger creates a ledger for the given participants.
// When percentages is nil or empty the amount is split equally (100/n each,
// assigned once). Otherwise its key set must match the participants exactly
// and the values must add up to 100 within PercentageTolerance.
func NewSharedLedger(id uuid.UUID, name string, participants []Person, percentages map[uuid.UUID]float64) (*SharedLedger, error) {
	if id == uuid.Nil {
		return nil, NewValidationError("ledger_id", "cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}
	if len(participants) == 0 {
		return nil, NewValidationError("participants", "at least one participant is required")
	}

	seen := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		if p.ID == uuid.Nil {
			return nil, NewValidationError("participants", "participant ID cannot be empty")
		}
		if seen[p.ID] {
			return nil, NewValidationError("participants", fmt.Sprintf("duplicate participant %s", p.ID))
		}
		seen[p.ID] = true
	}

	ledger := &SharedLedger{
		ID:           id,
		Name:         strings.TrimSpace(name),
		participants: make([]*Participant, 0, len(participants)),
	}

	if len(percentages) == 0 {
		equal := 100.0 / float64(len(participants))
		for _, p := range participants {
			ledger.participants = append(ledger.participants, &Participant{Person: p, Percentage: equal, Balance: decimal.Zero})
		}
		return ledger, nil
	}

	if err := validatePercentages(seen, percentages); err != nil {
		return nil, err
	}

	ledger.percentagesFixed = true
	for _, p := range participants {
		ledger.participants = append(ledger.participants, &Participant{Person: p, Percentage: percentages[p.ID], Balance: decimal.Zero})
	}
	return ledger, nil
}

// RestoreSharedLedger rebuilds a persisted ledger verbatim.
// Stored balances are kept as they are; no recomputation happens.
func RestoreSharedLedger(id uuid.UUID, name string, percentagesFixed bool, participants []Participant, expenses []Expense) (*SharedLedger, error) {
	if len(participants) == 0 {
		return nil, NewValidationError("participants", "at least one participant is required")
	}

	ledger := &SharedLedger{
		ID:               id,
		Name:             name,
		percentagesFixed: percentagesFixed,
		participants:     make([]*Participant, 0, len(participants)),
		expenses:         make([]*Expense, 0, len(expenses)),
	}
	for _, p := range participants {
		p := p
		ledger.participants = append(ledger.participants, &p)
	}
	for _, e := range expenses {
		e := e
		if !ledger.HasParticipant(e.PayerID) {
			return nil, NewValidationError("payer_id", fmt.Sprintf("expense %s is paid by a non-participant", e.ID))
		}
		e.LedgerID = id
		ledger.expenses = append(ledger.expenses, &e)
	}
	return ledger, nil
}

// validatePercentages checks that percentages covers exactly the members and adds up to 100
func validatePercentages(members map[uuid.UUID]bool, percentages map[uuid.UUID]float64) error {
	if len(percentages) != len(members) {
		return NewValidationError("percentages", "keys must match the participants")
	}

	sum := 0.0
	for personID, pct := range percentages {
		if !members[personID] {
			return NewValidationError("percentages", fmt.Sprintf("%s is not a participant", personID))
		}
		if pct < 0 || pct > 100 || math.IsNaN(pct) {
			return NewValidationError("percentages", fmt.Sprintf("percentage %v must be between 0 and 100", pct))
		}
		sum += pct
	}

	if math.Abs(sum-100.0) > PercentageTolerance {
		return NewValidationError("percentages", fmt.Sprintf("must add up to 100, got %v", sum))
	}
	return nil
}

// PercentagesFixed reports whether shares were given explicitly instead of split equally
func (l *SharedLedger) PercentagesFixed() bool {
	return l.percentagesFixed
}

// Participants returns a copy of the participants in creation order
func (l *SharedLedger) Participants() []Participant {
	out := make([]Participant, 0, len(l.participants))
	for _, p := range l.participants {
		out = append(out, *p)
	}
	return out
}

// Expenses returns a copy of the expense list in insertion order
func (l *SharedLedger) Expenses() []Expense {
	out := make([]Expense, 0, len(l.expenses))
	for _, e := range l.expenses {
		out = append(out, *e)
	}
	return out
}

// Expense looks up an expense of this ledger by ID
func (l *SharedLedger) Expense(id uuid.UUID) (Expense, bool) {
	if idx := l.indexOf(id); idx >= 0 {
		return *l.expenses[idx], true
	}
	return Expense{}, false
}

// HasParticipant reports whether the person is a member of the ledger
func (l *SharedLedger) HasParticipant(personID uuid.UUID) bool {
	return l.findParticipant(personID) != nil
}

// Balance returns the person's running balance, zero for non-participants
func (l *SharedLedger) Balance(personID uuid.UUID) decimal.Decimal {
	if p := l.findParticipant(personID); p != nil {
		return p.Balance
	}
	return decimal.Zero
}

// Percentage returns the person's share, zero for non-participants
func (l *SharedLedger) Percentage(personID uuid.UUID) float64 {
	if p := l.findParticipant(personID); p != nil {
		return p.Percentage
	}
	return 0
}

// TotalBalance sums every participant balance. It is zero after any recomputation.
func (l *SharedLedger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.participants {
		total = total.Add(p.Balance)
	}
	return total
}

// CostFor returns what the expense costs the person: their percentage of the
// amount rounded to the cent. Zero for non-participants.
func (l *SharedLedger) CostFor(e Expense, personID uuid.UUID) decimal.Decimal {
	p := l.findParticipant(personID)
	if p == nil {
		return decimal.Zero
	}
	return ShareOf(e.Amount, p.Percentage)
}

// AddExpense attaches the expense to the ledger and recomputes every balance.
// It is a no-op when an expense with the same ID is already present.
// The ledger keeps its own copy; e.LedgerID is set for the caller.
func (l *SharedLedger) AddExpense(e *Expense) error {
	if e == nil {
		return NewValidationError("expense", "cannot be nil")
	}
	if l.indexOf(e.ID) >= 0 {
		return nil
	}
	if err := l.CheckExpense(*e); err != nil {
		return err
	}
	if e.LedgerID != uuid.Nil && e.LedgerID != l.ID {
		return NewValidationError("ledger_id", "expense belongs to another ledger")
	}

	e.LedgerID = l.ID
	stored := *e
	l.expenses = append(l.expenses, &stored)
	l.Recalculate()
	return nil
}

// RemoveExpense detaches the expense with the given ID and recomputes balances.
// Returns the removed expense, or false when it was not present.
func (l *SharedLedger) RemoveExpense(id uuid.UUID) (Expense, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Expense{}, false
	}

	removed := *l.expenses[idx]
	l.expenses = append(l.expenses[:idx], l.expenses[idx+1:]...)
	l.Recalculate()

	removed.LedgerID = uuid.Nil
	return removed, true
}

// UpdateExpense changes an expense in place and recomputes balances.
// Nothing changes when the result would be invalid.
func (l *SharedLedger) UpdateExpense(id uuid.UUID, changes ExpenseChanges) (Expense, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}

	updated := *l.expenses[idx]
	updated.apply(changes)
	if err := l.CheckExpense(updated); err != nil {
		return Expense{}, err
	}

	*l.expenses[idx] = updated
	l.Recalculate()
	return updated, nil
}

// RedefinePercentages replaces every participant's share.
// Balances are NOT recomputed here; they reflect the new shares after the next
// add or remove (or an explicit Recalculate).
func (l *SharedLedger) RedefinePercentages(percentages map[uuid.UUID]float64) error {
	members := make(map[uuid.UUID]bool, len(l.participants))
	for _, p := range l.participants {
		members[p.Person.ID] = true
	}
	if err := validatePercentages(members, percentages); err != nil {
		return err
	}

	for _, p := range l.participants {
		p.Percentage = percentages[p.Person.ID]
	}
	l.percentagesFixed = true
	return nil
}

// Recalculate resets every balance to zero and replays the full expense
// history in insertion order.
func (l *SharedLedger) Recalculate() {
	for _, p := range l.participants {
		p.Balance = decimal.Zero
	}

	items := make([]ShareItem, 0, len(l.participants))
	for _, p := range l.participants {
		items = append(items, ShareItem{PersonID: p.Person.ID, Percentage: p.Percentage})
	}

	for _, e := range l.expenses {
		l.applyExpense(e, items)
	}
}

// applyExpense moves one expense through the balances.
// Non-payers lose their share; the payer gains the amount minus their own
// share (which already absorbed the rounding residual), so the deltas add to zero.
func (l *SharedLedger) applyExpense(e *Expense, items []ShareItem) {
	shares, err := CalculateShares(e.Amount, e.PayerID, items)
	if err != nil {
		// Unreachable for attached expenses: amount and payer are checked on attach
		return
	}

	for _, p := range l.participants {
		share := shares[p.Person.ID]
		if p.Person.ID == e.PayerID {
			p.Balance = p.Balance.Add(e.Amount.Sub(share))
		} else {
			p.Balance = p.Balance.Sub(share)
		}
	}
}

// CheckExpense reports whether the ledger would accept e, without changing anything
func (l *SharedLedger) CheckExpense(e Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !l.HasParticipant(e.PayerID) {
		return NewValidationError("payer_id", "payer is not a participant of the ledger")
	}
	return nil
}

func (l *SharedLedger) findParticipant(personID uuid.UUID) *Participant {
	for _, p := range l.participants {
		if p.Person.ID == personID {
			return p
		}
	}
	return nil
}

func (l *SharedLedger) indexOf(expenseID uuid.UUID) int {
	for i, e := range l.expenses {
		if e.ID == expenseID {
			return i
		}
	}
	return -1
}

func (l *SharedLedger) String() string {
	return l.Name
}
