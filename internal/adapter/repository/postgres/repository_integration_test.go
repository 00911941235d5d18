//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiongastos/backend/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("GASTOS_TEST_DSN")
	if dsn == "" {
		t.Skip("GASTOS_TEST_DSN not set")
	}

	db, err := NewDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	return db
}

func createPerson(t *testing.T, repo domain.PersonRepository, username string) domain.Person {
	t.Helper()
	p := domain.Person{ID: uuid.New(), FullName: username, Username: username + "-" + uuid.NewString()[:8]}
	require.NoError(t, repo.Create(context.Background(), &p))
	return p
}

func TestLedgerRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	persons := NewPersonRepository(db)
	ledgers := NewLedgerRepository(db)

	patri := createPerson(t, persons, "patri")
	alvaro := createPerson(t, persons, "alvaro")
	pablo := createPerson(t, persons, "pablo")

	flat, err := domain.NewSharedLedger(uuid.New(), "Flat", []domain.Person{patri, alvaro, pablo}, nil)
	require.NoError(t, err)
	require.NoError(t, ledgers.Create(ctx, flat))

	expense, err := domain.NewExpense(decimal.RequireFromString("5.00"),
		time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		domain.Category{Name: "Leisure"}, patri.ID, "Bombs")
	require.NoError(t, err)
	require.NoError(t, flat.AddExpense(expense))
	require.NoError(t, ledgers.Save(ctx, flat))

	loaded, err := ledgers.GetByID(ctx, flat.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.34", loaded.Balance(patri.ID).StringFixed(2))
	assert.Equal(t, "-1.67", loaded.Balance(alvaro.ID).StringFixed(2))
	assert.True(t, loaded.TotalBalance().IsZero())

	got, ok := loaded.Expense(expense.ID)
	require.True(t, ok)
	assert.Equal(t, "Leisure", got.Category.Name)
	assert.Equal(t, 12, got.Date.Day())

	byExpense, err := ledgers.GetByExpenseID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, flat.ID, byExpense.ID)

	// Move the expense to another ledger
	trip, err := domain.NewSharedLedger(uuid.New(), "Trip", []domain.Person{patri, pablo}, nil)
	require.NoError(t, err)
	require.NoError(t, ledgers.Create(ctx, trip))

	moved, ok := loaded.RemoveExpense(expense.ID)
	require.True(t, ok)
	require.NoError(t, trip.AddExpense(&moved))
	require.NoError(t, ledgers.Save(ctx, loaded))
	require.NoError(t, ledgers.Save(ctx, trip))

	byExpense, err = ledgers.GetByExpenseID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, byExpense.ID)

	mine, err := ledgers.ListByParticipant(ctx, patri.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = ledgers.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAlertRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	persons := NewPersonRepository(db)
	alerts := NewAlertRepository(db)

	owner := createPerson(t, persons, "owner")
	alert, err := domain.NewAlert(domain.AlertParams{
		OwnerID:      owner.ID,
		Name:         "Groceries",
		Periodicity:  domain.PeriodicityWeekly,
		Category:     &domain.Category{Name: "Food"},
		Strategy:     domain.ThresholdStrategy{Threshold: decimal.NewFromInt(10)},
		HistoryLimit: 2,
	})
	require.NoError(t, err)
	require.NoError(t, alerts.Create(ctx, alert))

	for _, total := range []int64{11, 12, 13} {
		require.True(t, alert.Evaluate(decimal.NewFromInt(total)))
	}
	require.NoError(t, alerts.Save(ctx, alert))

	loaded, err := alerts.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", loaded.Category.Name)
	history := loaded.History()
	require.Len(t, history, 2)
	assert.Contains(t, history[1].Message, "13.00")

	owned, err := alerts.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, alerts.Delete(ctx, alert.ID))
	assert.ErrorIs(t, alerts.Delete(ctx, alert.ID), domain.ErrNotFound)

	custom, err := domain.NewAlert(domain.AlertParams{
		OwnerID:     owner.ID,
		Name:        "Custom",
		Periodicity: domain.PeriodicityMonthly,
		Strategy:    domain.StrategyFunc(func(decimal.Decimal, domain.Periodicity, *domain.Category) bool { return true }),
	})
	require.NoError(t, err)
	assert.Error(t, alerts.Create(ctx, custom))
}

func TestCategoryRepository_GetByName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	name := "Cat-" + uuid.NewString()[:8]
	c, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, &c))

	got, err := categories.GetByName(ctx, "  "+name+" ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = categories.GetByName(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
