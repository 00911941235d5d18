package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiongastos/backend/internal/domain"
)

func TestPersonRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPersonRepository()

	patri := &domain.Person{ID: uuid.New(), FullName: "Patricia", Username: "patri"}
	require.NoError(t, repo.Create(ctx, patri))

	t.Run("duplicate username is rejected", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Person{ID: uuid.New(), FullName: "Other", Username: "patri"})
		assert.Error(t, err)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.GetByID(ctx, patri.ID)
		require.NoError(t, err)
		assert.Equal(t, "Patricia", got.FullName)

		got, err = repo.GetByUsername(ctx, "patri")
		require.NoError(t, err)
		assert.Equal(t, patri.ID, got.ID)

		_, err = repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		got, err := repo.GetByID(ctx, patri.ID)
		require.NoError(t, err)
		got.FullName = "changed"

		again, err := repo.GetByID(ctx, patri.ID)
		require.NoError(t, err)
		assert.Equal(t, "Patricia", again.FullName)
	})

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCategoryRepository_GetByNameIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()

	food, err := domain.NewCategory("Food")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &food))

	dup, err := domain.NewCategory(" FOOD ")
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, &dup))

	got, err := repo.GetByName(ctx, "  food")
	require.NoError(t, err)
	assert.Equal(t, food.ID, got.ID)

	_, err = repo.GetByName(ctx, "Travel")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLedgerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	alvaro := domain.Person{ID: uuid.New(), FullName: "Alvaro", Username: "alvaro"}
	pablo := domain.Person{ID: uuid.New(), FullName: "Pablo", Username: "pablo"}
	outsider := uuid.New()

	flat, err := domain.NewSharedLedger(uuid.New(), "Flat", []domain.Person{alvaro, pablo}, nil)
	require.NoError(t, err)
	personal, err := domain.NewSharedLedger(uuid.New(), "Personal", []domain.Person{alvaro}, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, flat))
	require.NoError(t, repo.Create(ctx, personal))
	assert.Error(t, repo.Create(ctx, flat))

	expense, err := domain.NewExpense(decimal.NewFromInt(30), time.Now(), domain.Category{Name: "Home"}, alvaro.ID, "rent")
	require.NoError(t, err)
	require.NoError(t, flat.AddExpense(expense))
	require.NoError(t, repo.Save(ctx, flat))

	t.Run("by expense", func(t *testing.T) {
		got, err := repo.GetByExpenseID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, flat.ID, got.ID)

		_, err = repo.GetByExpenseID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("by participant", func(t *testing.T) {
		ledgers, err := repo.ListByParticipant(ctx, alvaro.ID)
		require.NoError(t, err)
		require.Len(t, ledgers, 2)
		assert.Equal(t, "Flat", ledgers[0].Name)

		ledgers, err = repo.ListByParticipant(ctx, pablo.ID)
		require.NoError(t, err)
		assert.Len(t, ledgers, 1)

		ledgers, err = repo.ListByParticipant(ctx, outsider)
		require.NoError(t, err)
		assert.Empty(t, ledgers)
	})

	t.Run("save unknown ledger", func(t *testing.T) {
		other, err := domain.NewSharedLedger(uuid.New(), "Other", []domain.Person{pablo}, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, other), domain.ErrNotFound)
	})
}

func TestAlertRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository()
	owner := uuid.New()

	newAlert := func(name string, ownerID uuid.UUID) *domain.Alert {
		a, err := domain.NewAlert(domain.AlertParams{
			OwnerID:     ownerID,
			Name:        name,
			Periodicity: domain.PeriodicityMonthly,
			Strategy:    domain.ThresholdStrategy{Threshold: decimal.NewFromInt(100)},
		})
		require.NoError(t, err)
		return a
	}

	first := newAlert("Groceries", owner)
	second := newAlert("Leisure", owner)
	foreign := newAlert("Other", uuid.New())
	for _, a := range []*domain.Alert{first, second, foreign} {
		require.NoError(t, repo.Create(ctx, a))
	}

	alerts, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Groceries", alerts[0].Name)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domain.ErrNotFound)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	alerts, err = repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, second.ID, alerts[0].ID)

	assert.ErrorIs(t, repo.Save(ctx, first), domain.ErrNotFound)
	assert.NoError(t, repo.Save(ctx, second))
}

func TestNew(t *testing.T) {
	store := New()
	assert.NotNil(t, store.Persons)
	assert.NotNil(t, store.Categories)
	assert.NotNil(t, store.Ledgers)
	assert.NotNil(t, store.Alerts)
}
