package service

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        *cache.Store
}

func NewCategoryService(categoryRepo repository.CategoryRepository, store *cache.Store) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, cache: store}
}

// ListCategories returns every category with its published post count.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return cache.Aside(ctx, s.cache, "categories", cache.CategoriesKey, cache.CategoryTTL, func() ([]models.CategoryWithCount, error) {
		categories, err := s.categoryRepo.ListWithCounts(ctx)
		if err != nil {
			return nil, err
		}
		return models.MapSlice(categories, models.NewCategoryWithCount), nil
	})
}

func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*models.CategoryWithCount, error) {
	view, err := cache.Aside(ctx, s.cache, "category", cache.CategoryKey(slug), cache.CategoryTTL, func() (models.CategoryWithCount, error) {
		category, err := s.categoryRepo.GetBySlug(ctx, slug)
		if err != nil {
			return models.CategoryWithCount{}, err
		}
		return models.NewCategoryWithCount(category), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// EnsureCategory returns the category named name, creating it when missing.
func (s *CategoryService) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err == nil {
		s.cache.Invalidate(ctx, cache.CategoriesKey)
		return category, nil
	} else if models.AsAppError(err).Code != models.CodeValidation {
		return nil, err
	}
	return s.categoryRepo.GetByName(ctx, name)
}
