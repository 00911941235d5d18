package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gestiongastos/backend/internal/domain"
)

// personRepository implements domain.PersonRepository
type personRepository struct {
	db *DB
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB) domain.PersonRepository {
	return &personRepository{db: db}
}

// Create creates a new person
func (r *personRepository) Create(ctx context.Context, person *domain.Person) error {
	query := `
		INSERT INTO persons (id, full_name, username)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, person.ID, person.FullName, person.Username)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetByID retrieves a person by its ID
func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	query := `
		SELECT id, full_name, username
		FROM persons
		WHERE id = $1
	`

	var person domain.Person
	err := r.db.QueryRowContext(ctx, query, id).Scan(&person.ID, &person.FullName, &person.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("person %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get person by ID: %w", err)
	}

	return &person, nil
}

// GetByUsername retrieves a person by username
func (r *personRepository) GetByUsername(ctx context.Context, username string) (*domain.Person, error) {
	query := `
		SELECT id, full_name, username
		FROM persons
		WHERE username = $1
	`

	var person domain.Person
	err := r.db.QueryRowContext(ctx, query, username).Scan(&person.ID, &person.FullName, &person.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("person %q: %w", username, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get person by username: %w", err)
	}

	return &person, nil
}

// List retrieves every person in registration order
func (r *personRepository) List(ctx context.Context) ([]*domain.Person, error) {
	query := `
		SELECT id, full_name, username
		FROM persons
		ORDER BY created_at ASC, username ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []*domain.Person
	for rows.Next() {
		var person domain.Person
		if err := rows.Scan(&person.ID, &person.FullName, &person.Username); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, &person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}

	return persons, nil
}
