package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/metrics"
)

// MockPersonRepository is a mock implementation of PersonRepository for testing
type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Create(ctx context.Context, person *domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Person), args.Error(1)
}

func (m *MockPersonRepository) GetByUsername(ctx context.Context, username string) (*domain.Person, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Person), args.Error(1)
}

func (m *MockPersonRepository) List(ctx context.Context) ([]*domain.Person, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Person), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *domain.SharedLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) Save(ctx context.Context, ledger *domain.SharedLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SharedLedger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedLedger), args.Error(1)
}

func (m *MockLedgerRepository) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*domain.SharedLedger, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedLedger), args.Error(1)
}

func (m *MockLedgerRepository) ListByParticipant(ctx context.Context, personID uuid.UUID) ([]*domain.SharedLedger, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SharedLedger), args.Error(1)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func newTestService(persons *MockPersonRepository, ledgers *MockLedgerRepository) *LedgerService {
	return NewLedgerService(persons, ledgers, nil, zerolog.Nop())
}

func TestRegisterPerson_CreatesPersonalLedger(t *testing.T) {
	ctx := context.Background()
	persons := new(MockPersonRepository)
	ledgers := new(MockLedgerRepository)
	service := newTestService(persons, ledgers)

	persons.On("GetByUsername", ctx, "patri").Return(nil, fmt.Errorf("person patri: %w", domain.ErrNotFound))
	persons.On("Create", ctx, mock.MatchedBy(func(p *domain.Person) bool {
		return p.Username == "patri" && p.FullName == "Patricia" && p.ID != uuid.Nil
	})).Return(nil)
	ledgers.On("Create", ctx, mock.MatchedBy(func(l *domain.SharedLedger) bool {
		return l.Name == "Personal account (patri)" && len(l.Participants()) == 1
	})).Return(nil)

	person, personal, err := service.RegisterPerson(ctx, RegisterPersonInput{FullName: "Patricia", Username: "patri"})

	require.NoError(t, err)
	assert.Equal(t, "patri", person.Username)
	assert.Equal(t, 100.0, personal.Percentage(person.ID))
	assert.False(t, personal.PercentagesFixed())
	persons.AssertExpectations(t)
	ledgers.AssertExpectations(t)
}

func TestRegisterPerson_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate username", func(t *testing.T) {
		persons := new(MockPersonRepository)
		ledgers := new(MockLedgerRepository)
		service := newTestService(persons, ledgers)

		persons.On("GetByUsername", ctx, "patri").Return(&domain.Person{ID: uuid.New(), FullName: "P", Username: "patri"}, nil)

		_, _, err := service.RegisterPerson(ctx, RegisterPersonInput{FullName: "Patricia", Username: "patri"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		persons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty username", func(t *testing.T) {
		service := newTestService(new(MockPersonRepository), new(MockLedgerRepository))

		_, _, err := service.RegisterPerson(ctx, RegisterPersonInput{FullName: "Patricia"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("repository failure", func(t *testing.T) {
		persons := new(MockPersonRepository)
		service := newTestService(persons, new(MockLedgerRepository))

		persons.On("GetByUsername", ctx, "patri").Return(nil, errors.New("connection refused"))

		_, _, err := service.RegisterPerson(ctx, RegisterPersonInput{FullName: "Patricia", Username: "patri"})
		assert.EqualError(t, err, "connection refused")
	})
}

func TestCreateLedger(t *testing.T) {
	ctx := context.Background()
	patri := &domain.Person{ID: uuid.New(), FullName: "Patri", Username: "patri"}
	alvaro := &domain.Person{ID: uuid.New(), FullName: "Álvaro", Username: "alvaro"}
	stranger := uuid.New()

	tests := []struct {
		name        string
		input       CreateLedgerInput
		setup       func(persons *MockPersonRepository, ledgers *MockLedgerRepository)
		wantErr     error
		wantCreated bool
	}{
		{
			name:  "equal split",
			input: CreateLedgerInput{Name: "Bombs", ParticipantIDs: []uuid.UUID{patri.ID, alvaro.ID}},
			setup: func(persons *MockPersonRepository, ledgers *MockLedgerRepository) {
				persons.On("GetByID", ctx, patri.ID).Return(patri, nil)
				persons.On("GetByID", ctx, alvaro.ID).Return(alvaro, nil)
				ledgers.On("Create", ctx, mock.AnythingOfType("*domain.SharedLedger")).Return(nil)
			},
			wantCreated: true,
		},
		{
			name: "explicit percentages",
			input: CreateLedgerInput{
				Name:           "Flat",
				ParticipantIDs: []uuid.UUID{patri.ID, alvaro.ID},
				Percentages:    map[uuid.UUID]float64{patri.ID: 60, alvaro.ID: 40},
			},
			setup: func(persons *MockPersonRepository, ledgers *MockLedgerRepository) {
				persons.On("GetByID", ctx, patri.ID).Return(patri, nil)
				persons.On("GetByID", ctx, alvaro.ID).Return(alvaro, nil)
				ledgers.On("Create", ctx, mock.AnythingOfType("*domain.SharedLedger")).Return(nil)
			},
			wantCreated: true,
		},
		{
			name: "percentages not adding up",
			input: CreateLedgerInput{
				Name:           "Flat",
				ParticipantIDs: []uuid.UUID{patri.ID, alvaro.ID},
				Percentages:    map[uuid.UUID]float64{patri.ID: 60, alvaro.ID: 39.9},
			},
			setup: func(persons *MockPersonRepository, ledgers *MockLedgerRepository) {
				persons.On("GetByID", ctx, patri.ID).Return(patri, nil)
				persons.On("GetByID", ctx, alvaro.ID).Return(alvaro, nil)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "no participants",
			input:   CreateLedgerInput{Name: "Empty"},
			setup:   func(*MockPersonRepository, *MockLedgerRepository) {},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "unregistered participant",
			input: CreateLedgerInput{Name: "Ghost", ParticipantIDs: []uuid.UUID{patri.ID, stranger}},
			setup: func(persons *MockPersonRepository, ledgers *MockLedgerRepository) {
				persons.On("GetByID", ctx, patri.ID).Return(patri, nil)
				persons.On("GetByID", ctx, stranger).Return(nil, fmt.Errorf("person %s: %w", stranger, domain.ErrNotFound))
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persons := new(MockPersonRepository)
			ledgers := new(MockLedgerRepository)
			tt.setup(persons, ledgers)
			service := newTestService(persons, ledgers)

			ledger, err := service.CreateLedger(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ledger)
				ledgers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Name, ledger.Name)
			assert.Len(t, ledger.Participants(), len(tt.input.ParticipantIDs))
			ledgers.AssertExpectations(t)
		})
	}
}

func TestRedefinePercentages_KeepsBalancesUntilRecalculate(t *testing.T) {
	ctx := context.Background()
	persons := new(MockPersonRepository)
	ledgers := new(MockLedgerRepository)
	reg := prometheus.NewRegistry()
	service := NewLedgerService(persons, ledgers, metrics.New(reg), zerolog.Nop())

	a := domain.Person{ID: uuid.New(), FullName: "A", Username: "a"}
	b := domain.Person{ID: uuid.New(), FullName: "B", Username: "b"}
	ledger, err := domain.NewSharedLedger(uuid.New(), "Flat", []domain.Person{a, b}, nil)
	require.NoError(t, err)
	e, err := domain.NewExpense(decimal.NewFromInt(100), time.Now(), domain.Category{Name: "Rent"}, a.ID, "")
	require.NoError(t, err)
	require.NoError(t, ledger.AddExpense(e))

	ledgers.On("GetByID", ctx, ledger.ID).Return(ledger, nil)
	ledgers.On("Save", ctx, ledger).Return(nil)

	updated, err := service.RedefinePercentages(ctx, ledger.ID, map[uuid.UUID]float64{a.ID: 70, b.ID: 30})
	require.NoError(t, err)
	assert.Equal(t, "50.00", updated.Balance(a.ID).StringFixed(2))

	updated, err = service.Recalculate(ctx, ledger.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", updated.Balance(a.ID).StringFixed(2))
	assert.Equal(t, "-30.00", updated.Balance(b.ID).StringFixed(2))

	assert.Equal(t, 1.0, counterValue(t, reg, "ledger_recalculations_total"))
	ledgers.AssertNumberOfCalls(t, "Save", 2)
}

func TestRedefinePercentages_InvalidMapIsNotSaved(t *testing.T) {
	ctx := context.Background()
	ledgers := new(MockLedgerRepository)
	service := newTestService(new(MockPersonRepository), ledgers)

	a := domain.Person{ID: uuid.New(), FullName: "A", Username: "a"}
	ledger, err := domain.NewSharedLedger(uuid.New(), "Solo", []domain.Person{a}, nil)
	require.NoError(t, err)
	ledgers.On("GetByID", ctx, ledger.ID).Return(ledger, nil)

	_, err = service.RedefinePercentages(ctx, ledger.ID, map[uuid.UUID]float64{a.ID: 99})
	assert.ErrorIs(t, err, domain.ErrValidation)
	ledgers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCostFor(t *testing.T) {
	ctx := context.Background()
	ledgers := new(MockLedgerRepository)
	service := newTestService(new(MockPersonRepository), ledgers)

	a := domain.Person{ID: uuid.New(), FullName: "A", Username: "a"}
	b := domain.Person{ID: uuid.New(), FullName: "B", Username: "b"}
	ledger, err := domain.NewSharedLedger(uuid.New(), "Cost", []domain.Person{a, b},
		map[uuid.UUID]float64{a.ID: 25, b.ID: 75})
	require.NoError(t, err)
	e, err := domain.NewExpense(decimal.RequireFromString("9.99"), time.Now(), domain.Category{Name: "Food"}, a.ID, "")
	require.NoError(t, err)
	require.NoError(t, ledger.AddExpense(e))

	ledgers.On("GetByExpenseID", ctx, e.ID).Return(ledger, nil)

	cost, err := service.CostFor(ctx, e.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.49", cost.StringFixed(2))

	cost, err = service.CostFor(ctx, e.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}
