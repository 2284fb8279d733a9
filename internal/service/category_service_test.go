package service

import (
	"context"
	"testing"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_ListCategories_Cached(t *testing.T) {
	mr, store := testutil.NewStore(t)
	calls := 0
	repo := &categoryRepoStub{
		listFn: func(context.Context) ([]models.Category, error) {
			calls++
			return []models.Category{{ID: 1, Name: "Go", Slug: "go", PostsCount: 3}}, nil
		},
	}
	svc := NewCategoryService(repo, store)
	ctx := context.Background()

	first, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, int64(3), first[0].PostsCount)
	assert.True(t, mr.Exists(cache.CategoriesKey))

	second, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCategoryService_GetCategory(t *testing.T) {
	repo := &categoryRepoStub{
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			if slug == "go" {
				return &models.Category{ID: 1, Name: "Go", Slug: "go", PostsCount: 2}, nil
			}
			return nil, models.NewNotFoundError("Category", slug)
		},
	}
	svc := NewCategoryService(repo, nil)

	got, err := svc.GetCategory(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)
	assert.Equal(t, int64(2), got.PostsCount)

	_, err = svc.GetCategory(context.Background(), "rust")
	assert.Equal(t, models.CodeNotFound, code(err))
}

func TestCategoryService_EnsureCategory(t *testing.T) {
	existing := &models.Category{ID: 4, Name: "Go", Slug: "go"}
	repo := &categoryRepoStub{
		createFn: func(_ context.Context, c *models.Category) error {
			if c.Name == existing.Name {
				return models.NewFieldError("name", "A category with this name already exists.")
			}
			c.ID = 9
			return nil
		},
		getByNameFn: func(context.Context, string) (*models.Category, error) {
			return existing, nil
		},
	}
	svc := NewCategoryService(repo, nil)

	got, err := svc.EnsureCategory(context.Background(), "Go")
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.ID)

	got, err = svc.EnsureCategory(context.Background(), "Rust")
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.ID)
}
