package category

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gestiongastos/backend/internal/domain"
)

// CategoryService resolves category names to stored categories
type CategoryService struct {
	Repo   domain.CategoryRepository
	Logger zerolog.Logger
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo domain.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{Repo: repo, Logger: logger}
}

// GetOrCreateCategory returns the stored category matching name (ignoring case
// and surrounding spaces), creating it when it does not exist yet.
func (s *CategoryService) GetOrCreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)

	existing, err := s.Repo.GetByName(ctx, name)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Category{}, err
	}

	c, err := domain.NewCategory(name)
	if err != nil {
		return domain.Category{}, err
	}
	if err := s.Repo.Create(ctx, &c); err != nil {
		return domain.Category{}, err
	}

	s.Logger.Debug().Str("category", c.Name).Msg("category created")
	return c, nil
}

// ListCategoryNames returns every category name in alphabetical order
func (s *CategoryService) ListCategoryNames(ctx context.Context) ([]string, error) {
	categories, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names, nil
}
