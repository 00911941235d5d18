// Package memory keeps every entity in process memory. Ledgers and alerts
// are stored as pointers, so a loaded aggregate is the stored aggregate.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gestiongastos/backend/internal/domain"
)

// Store holds one repository per aggregate
type Store struct {
	Persons    *PersonRepository
	Categories *CategoryRepository
	Ledgers    *LedgerRepository
	Alerts     *AlertRepository
}

// New creates an empty store
func New() *Store {
	return &Store{
		Persons:    NewPersonRepository(),
		Categories: NewCategoryRepository(),
		Ledgers:    NewLedgerRepository(),
		Alerts:     NewAlertRepository(),
	}
}

// PersonRepository implements domain.PersonRepository
type PersonRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]domain.Person
}

// NewPersonRepository creates an empty person repository
func NewPersonRepository() *PersonRepository {
	return &PersonRepository{byID: make(map[uuid.UUID]domain.Person)}
}

// Create stores a new person; IDs and usernames are unique
func (r *PersonRepository) Create(_ context.Context, person *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[person.ID]; ok {
		return fmt.Errorf("person %s already exists", person.ID)
	}
	for _, p := range r.byID {
		if p.Username == person.Username {
			return fmt.Errorf("username %q already taken", person.Username)
		}
	}
	r.byID[person.ID] = *person
	r.order = append(r.order, person.ID)
	return nil
}

// GetByID retrieves a person by its ID
func (r *PersonRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// GetByUsername retrieves a person by username
func (r *PersonRepository) GetByUsername(_ context.Context, username string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.Username == username {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("person %q: %w", username, domain.ErrNotFound)
}

// List retrieves every person in registration order
func (r *PersonRepository) List(_ context.Context) ([]*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Person, 0, len(r.order))
	for _, id := range r.order {
		p := r.byID[id]
		out = append(out, &p)
	}
	return out, nil
}

// CategoryRepository implements domain.CategoryRepository
type CategoryRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]domain.Category
}

// NewCategoryRepository creates an empty category repository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{byID: make(map[uuid.UUID]domain.Category)}
}

// Create stores a new category; names are unique ignoring case
func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[category.ID]; ok {
		return fmt.Errorf("category %s already exists", category.ID)
	}
	for _, c := range r.byID {
		if c.Matches(*category) {
			return fmt.Errorf("category %q already exists", category.Name)
		}
	}
	r.byID[category.ID] = *category
	r.order = append(r.order, category.ID)
	return nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// GetByName retrieves a category by name, ignoring case and surrounding spaces
func (r *CategoryRepository) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.CategoryKey(name)
	for _, c := range r.byID {
		if c.Key() == key {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
}

// List retrieves every category in creation order
func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.order))
	for _, id := range r.order {
		c := r.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

// LedgerRepository implements domain.LedgerRepository
type LedgerRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*domain.SharedLedger
}

// NewLedgerRepository creates an empty ledger repository
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{byID: make(map[uuid.UUID]*domain.SharedLedger)}
}

// Create stores a new ledger
func (r *LedgerRepository) Create(_ context.Context, ledger *domain.SharedLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[ledger.ID]; ok {
		return fmt.Errorf("ledger %s already exists", ledger.ID)
	}
	r.byID[ledger.ID] = ledger
	r.order = append(r.order, ledger.ID)
	return nil
}

// Save replaces the stored ledger
func (r *LedgerRepository) Save(_ context.Context, ledger *domain.SharedLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[ledger.ID]; !ok {
		return fmt.Errorf("ledger %s: %w", ledger.ID, domain.ErrNotFound)
	}
	r.byID[ledger.ID] = ledger
	return nil
}

// GetByID retrieves a ledger by its ID
func (r *LedgerRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.SharedLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("ledger %s: %w", id, domain.ErrNotFound)
	}
	return l, nil
}

// GetByExpenseID retrieves the ledger owning the given expense
func (r *LedgerRepository) GetByExpenseID(_ context.Context, expenseID uuid.UUID) (*domain.SharedLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		l := r.byID[id]
		if _, ok := l.Expense(expenseID); ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
}

// ListByParticipant retrieves the person's ledgers in creation order
func (r *LedgerRepository) ListByParticipant(_ context.Context, personID uuid.UUID) ([]*domain.SharedLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SharedLedger, 0)
	for _, id := range r.order {
		if l := r.byID[id]; l.HasParticipant(personID) {
			out = append(out, l)
		}
	}
	return out, nil
}

// AlertRepository implements domain.AlertRepository
type AlertRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*domain.Alert
}

// NewAlertRepository creates an empty alert repository
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{byID: make(map[uuid.UUID]*domain.Alert)}
}

// Create stores a new alert
func (r *AlertRepository) Create(_ context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[alert.ID]; ok {
		return fmt.Errorf("alert %s already exists", alert.ID)
	}
	r.byID[alert.ID] = alert
	r.order = append(r.order, alert.ID)
	return nil
}

// Save replaces the stored alert
func (r *AlertRepository) Save(_ context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[alert.ID]; !ok {
		return fmt.Errorf("alert %s: %w", alert.ID, domain.ErrNotFound)
	}
	r.byID[alert.ID] = alert
	return nil
}

// GetByID retrieves an alert by its ID
func (r *AlertRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// ListByOwner retrieves the person's alerts in creation order
func (r *AlertRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Alert, 0)
	for _, id := range r.order {
		if a := r.byID[id]; a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Delete removes an alert
func (r *AlertRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
