package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Person represents a user of the application.
// Two persons are the same person when their IDs match.
type Person struct {
	ID       uuid.UUID
	FullName string
	Username string
}

// Validate ensures the person adheres to domain rules
func (p *Person) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return NewValidationError("full_name", "cannot be empty")
	}
	if strings.TrimSpace(p.Username) == "" {
		return NewValidationError("username", "cannot be empty")
	}
	return nil
}

// Equal reports whether both values refer to the same person
func (p Person) Equal(other Person) bool {
	return p.ID == other.ID
}

func (p Person) String() string {
	return p.Username
}
