package alerting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
)

// Spend sums what the person paid for, through their share, in the current
// period of the given periodicity. Only expenses in the category are counted
// when category is not nil.
// Logic:
//  1. Visit every expense of every ledger the person takes part in
//  2. Keep those dated inside the period containing today
//  3. Keep those matching the category filter
//  4. Add the person's cost for each (their percentage of the amount, to the cent)
func Spend(ledgers []*domain.SharedLedger, personID uuid.UUID, periodicity domain.Periodicity, category *domain.Category, today time.Time, weeks domain.WeekNumbering) decimal.Decimal {
	total := decimal.Zero
	for _, ledger := range ledgers {
		if !ledger.HasParticipant(personID) {
			continue
		}
		for _, e := range ledger.Expenses() {
			if !periodicity.Covers(e.Date, today, weeks) {
				continue
			}
			if category != nil && !category.Matches(e.Category) {
				continue
			}
			total = total.Add(ledger.CostFor(e, personID))
		}
	}
	return total
}
