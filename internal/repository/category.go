package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	ListWithCounts(ctx context.Context) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a CategoryRepository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func withPublishedCount(db *gorm.DB) *gorm.DB {
	return db.Select(
		"categories.*, (SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id AND posts.status = ?) AS posts_count",
		models.StatusPublished,
	)
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewFieldError("name", "A category with this name already exists.")
		}
		return writeError(err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := readDB(r.db).WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "Category", id)
	}
	return &c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := readDB(r.db).WithContext(ctx).
		Scopes(withPublishedCount).
		Where("categories.slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, lookupError(err, "Category", slug)
	}
	return &c, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, lookupError(err, "Category", name)
	}
	return &c, nil
}

// ListWithCounts returns every category by name with its published post count.
func (r *categoryRepository) ListWithCounts(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := readDB(r.db).WithContext(ctx).
		Scopes(withPublishedCount).
		Order("categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}
