package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
)

// LedgerSummary is one ledger as seen by one participant
type LedgerSummary struct {
	LedgerID   uuid.UUID
	Name       string
	Percentage float64
	Balance    decimal.Decimal
}

// SummaryResult represents a person's position across every ledger
type SummaryResult struct {
	PersonID   uuid.UUID
	Ledgers    []LedgerSummary
	OwedToMe   decimal.Decimal // Sum of positive balances
	IOwe       decimal.Decimal // Sum of negative balances, as a positive amount
	Net        decimal.Decimal
	MonthSpend decimal.Decimal // Person's cost of this month's expenses
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	LedgerRepo domain.LedgerRepository

	now func() time.Time
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(ledgerRepo domain.LedgerRepository) *DashboardService {
	return &DashboardService{
		LedgerRepo: ledgerRepo,
		now:        time.Now,
	}
}

// GetSummary calculates a person's balances and current month spend
// Logic:
//   - OwedToMe: sum of the person's positive ledger balances
//   - IOwe: sum of the person's negative ledger balances (absolute value)
//   - Net: OwedToMe - IOwe
//   - MonthSpend: person's cost of every expense dated in the current month
func (s *DashboardService) GetSummary(ctx context.Context, personID uuid.UUID) (*SummaryResult, error) {
	// 1. Get every ledger the person takes part in
	ledgers, err := s.LedgerRepo.ListByParticipant(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	result := &SummaryResult{
		PersonID:   personID,
		Ledgers:    make([]LedgerSummary, 0, len(ledgers)),
		OwedToMe:   decimal.Zero,
		IOwe:       decimal.Zero,
		MonthSpend: decimal.Zero,
	}
	today := s.now()

	// 2. Balances and monthly cost per ledger
	for _, ledger := range ledgers {
		balance := ledger.Balance(personID)
		result.Ledgers = append(result.Ledgers, LedgerSummary{
			LedgerID:   ledger.ID,
			Name:       ledger.Name,
			Percentage: ledger.Percentage(personID),
			Balance:    balance,
		})

		if balance.IsPositive() {
			result.OwedToMe = result.OwedToMe.Add(balance)
		} else {
			result.IOwe = result.IOwe.Add(balance.Neg())
		}

		for _, e := range ledger.Expenses() {
			if domain.SameMonth(e.Date, today) {
				result.MonthSpend = result.MonthSpend.Add(ledger.CostFor(e, personID))
			}
		}
	}

	// 3. Net position
	result.Net = result.OwedToMe.Sub(result.IOwe)

	return result, nil
}
