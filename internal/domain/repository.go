package domain

import (
	"context"

	"github.com/google/uuid"
)

// PersonRepository defines the interface for person persistence operations
type PersonRepository interface {
	// Create stores a new person
	Create(ctx context.Context, person *Person) error

	// GetByID retrieves a person by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// GetByUsername retrieves a person by username
	GetByUsername(ctx context.Context, username string) (*Person, error)

	// List retrieves every registered person
	List(ctx context.Context) ([]*Person, error)
}

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	// Create stores a new category
	Create(ctx context.Context, category *Category) error

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// GetByName retrieves a category by name, ignoring case and surrounding spaces
	GetByName(ctx context.Context, name string) (*Category, error)

	// List retrieves every category
	List(ctx context.Context) ([]*Category, error)
}

// LedgerRepository defines the interface for shared ledger persistence operations.
// A ledger is stored together with its participants and expenses.
type LedgerRepository interface {
	// Create stores a new ledger
	Create(ctx context.Context, ledger *SharedLedger) error

	// Save replaces the stored state of an existing ledger
	Save(ctx context.Context, ledger *SharedLedger) error

	// GetByID retrieves a ledger by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*SharedLedger, error)

	// GetByExpenseID retrieves the ledger owning the given expense
	GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*SharedLedger, error)

	// ListByParticipant retrieves every ledger the person is a member of
	ListByParticipant(ctx context.Context, personID uuid.UUID) ([]*SharedLedger, error)
}

// AlertRepository defines the interface for alert persistence operations.
// An alert is stored together with its notification history.
type AlertRepository interface {
	// Create stores a new alert
	Create(ctx context.Context, alert *Alert) error

	// Save replaces the stored state (including history) of an existing alert
	Save(ctx context.Context, alert *Alert) error

	// GetByID retrieves an alert by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// ListByOwner retrieves every alert owned by the person
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Alert, error)

	// Delete removes an alert and its history
	Delete(ctx context.Context, id uuid.UUID) error
}
