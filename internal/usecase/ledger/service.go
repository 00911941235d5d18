package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/metrics"
	"github.com/gestiongastos/backend/internal/validation"
)

// PersonalLedgerName is the name given to the single-member ledger created for every new person
const PersonalLedgerName = "Personal account (%s)"

// RegisterPersonInput represents the input for registering a person
type RegisterPersonInput struct {
	FullName string `json:"full_name" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// CreateLedgerInput represents the input for creating a shared ledger.
// An empty Percentages map splits every expense equally.
type CreateLedgerInput struct {
	Name           string                `json:"name" validate:"required"`
	ParticipantIDs []uuid.UUID           `json:"participant_ids" validate:"required,min=1,dive,required"`
	Percentages    map[uuid.UUID]float64 `json:"percentages"`
}

// LedgerService handles persons and the lifecycle of shared ledgers
type LedgerService struct {
	PersonRepo domain.PersonRepository
	LedgerRepo domain.LedgerRepository
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(personRepo domain.PersonRepository, ledgerRepo domain.LedgerRepository, m *metrics.Metrics, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		PersonRepo: personRepo,
		LedgerRepo: ledgerRepo,
		Metrics:    m,
		Logger:     logger,
	}
}

// RegisterPerson creates a person together with their personal ledger
// Logic:
//  1. Validate input and reject a username already taken
//  2. Store the person
//  3. Create a ledger with the person as its only participant (100%)
func (s *LedgerService) RegisterPerson(ctx context.Context, input RegisterPersonInput) (*domain.Person, *domain.SharedLedger, error) {
	if err := validation.Struct(input); err != nil {
		return nil, nil, err
	}

	// 1. Username must be unique
	existing, err := s.PersonRepo.GetByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.NewValidationError("username", fmt.Sprintf("%q is already taken", input.Username))
	}

	// 2. Store the person
	person := &domain.Person{ID: uuid.New(), FullName: input.FullName, Username: input.Username}
	if err := person.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.PersonRepo.Create(ctx, person); err != nil {
		return nil, nil, err
	}

	// 3. Personal ledger
	personal, err := domain.NewSharedLedger(uuid.New(), fmt.Sprintf(PersonalLedgerName, person.Username), []domain.Person{*person}, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := s.LedgerRepo.Create(ctx, personal); err != nil {
		return nil, nil, err
	}

	s.Logger.Info().
		Str("person_id", person.ID.String()).
		Str("username", person.Username).
		Str("ledger_id", personal.ID.String()).
		Msg("person registered")

	return person, personal, nil
}

// CreateLedger creates a shared ledger for registered persons
func (s *LedgerService) CreateLedger(ctx context.Context, input CreateLedgerInput) (*domain.SharedLedger, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	participants := make([]domain.Person, 0, len(input.ParticipantIDs))
	for _, id := range input.ParticipantIDs {
		person, err := s.PersonRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("participant_ids", fmt.Sprintf("person %s is not registered", id))
			}
			return nil, err
		}
		participants = append(participants, *person)
	}

	ledger, err := domain.NewSharedLedger(uuid.New(), input.Name, participants, input.Percentages)
	if err != nil {
		return nil, err
	}
	if err := s.LedgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}

	s.Logger.Info().
		Str("ledger_id", ledger.ID.String()).
		Int("participants", len(participants)).
		Bool("percentages_fixed", ledger.PercentagesFixed()).
		Msg("ledger created")

	return ledger, nil
}

// GetLedger retrieves a ledger by ID
func (s *LedgerService) GetLedger(ctx context.Context, id uuid.UUID) (*domain.SharedLedger, error) {
	return s.LedgerRepo.GetByID(ctx, id)
}

// ListLedgers retrieves every ledger the person participates in
func (s *LedgerService) ListLedgers(ctx context.Context, personID uuid.UUID) ([]*domain.SharedLedger, error) {
	return s.LedgerRepo.ListByParticipant(ctx, personID)
}

// RedefinePercentages replaces the shares of every participant.
// Balances keep their previous values until the next expense change or an
// explicit Recalculate.
func (s *LedgerService) RedefinePercentages(ctx context.Context, ledgerID uuid.UUID, percentages map[uuid.UUID]float64) (*domain.SharedLedger, error) {
	ledger, err := s.LedgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	if err := ledger.RedefinePercentages(percentages); err != nil {
		return nil, err
	}
	if err := s.LedgerRepo.Save(ctx, ledger); err != nil {
		return nil, err
	}

	s.Logger.Info().Str("ledger_id", ledger.ID.String()).Msg("ledger percentages redefined")
	return ledger, nil
}

// Recalculate recomputes every balance of the ledger from its expense history
func (s *LedgerService) Recalculate(ctx context.Context, ledgerID uuid.UUID) (*domain.SharedLedger, error) {
	ledger, err := s.LedgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	ledger.Recalculate()
	s.Metrics.IncRecalculation()

	if err := s.LedgerRepo.Save(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// CostFor returns what an expense of the ledger costs the person
func (s *LedgerService) CostFor(ctx context.Context, expenseID, personID uuid.UUID) (decimal.Decimal, error) {
	ledger, err := s.LedgerRepo.GetByExpenseID(ctx, expenseID)
	if err != nil {
		return decimal.Zero, err
	}

	e, ok := ledger.Expense(expenseID)
	if !ok {
		return decimal.Zero, fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
	}
	return ledger.CostFor(e, personID), nil
}
