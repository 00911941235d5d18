package seeder

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gestiongastos/backend/internal/domain"
)

// Fixed UUIDs for the default categories, stable across restarts and stores
var (
	CategoryFood          = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	CategoryTransport     = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	CategoryHome          = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	CategoryLeisure       = uuid.MustParse("00000000-0000-0000-0000-000000000004")
	CategoryMiscellaneous = uuid.MustParse("00000000-0000-0000-0000-000000000005")
)

// DefaultCategories is the category set every installation starts with
var DefaultCategories = []domain.Category{
	{ID: CategoryFood, Name: "Food"},
	{ID: CategoryTransport, Name: "Transport"},
	{ID: CategoryHome, Name: "Home"},
	{ID: CategoryLeisure, Name: "Leisure"},
	{ID: CategoryMiscellaneous, Name: "Miscellaneous"},
}

// SystemSeeder handles seeding of the default categories
type SystemSeeder struct {
	repo domain.CategoryRepository
}

// NewSystemSeeder creates a new SystemSeeder instance
func NewSystemSeeder(repo domain.CategoryRepository) *SystemSeeder {
	return &SystemSeeder{
		repo: repo,
	}
}

// Seed ensures every default category exists.
// A category already stored under the same name (any case) is left untouched.
func (s *SystemSeeder) Seed(ctx context.Context) error {
	for _, def := range DefaultCategories {
		_, err := s.repo.GetByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		c := def
		if err := s.repo.Create(ctx, &c); err != nil {
			return err
		}
	}

	return nil
}
