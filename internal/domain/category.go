package domain

import (
	"strings"

	"github.com/google/uuid"
)

// AllCategoriesLabel is the display label meaning "no category filter"
const AllCategoriesLabel = "All"

// Category is a filter key and display label for expenses.
// Identity is the case-insensitive, trimmed name.
type Category struct {
	ID   uuid.UUID
	Name string
}

// NewCategory creates a category with a fresh ID and a trimmed name
func NewCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, NewValidationError("category", "name cannot be empty")
	}
	return Category{ID: uuid.New(), Name: name}, nil
}

// CategoryKey normalizes a category name for lookups
func CategoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the normalized lookup key of the category
func (c Category) Key() string {
	return CategoryKey(c.Name)
}

// Matches reports whether both categories have the same identity
func (c Category) Matches(other Category) bool {
	return c.Key() == other.Key()
}

// IsNoFilterCategory reports whether a user-supplied category name means "every category"
func IsNoFilterCategory(name string) bool {
	key := CategoryKey(name)
	return key == "" || key == CategoryKey(AllCategoriesLabel)
}

func (c Category) String() string {
	return c.Name
}
