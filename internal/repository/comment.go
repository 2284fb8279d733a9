package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID returns the comment only if it belongs to the post with postSlug.
	GetByID(ctx context.Context, postSlug string, id uint) (*models.Comment, error)
	// List pages through comments of the post with postSlug; an empty slug lists all.
	List(ctx context.Context, postSlug string, limit, offset int) ([]models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func onPost(slug string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if slug == "" {
			return db
		}
		return db.Where("comments.post_id IN (SELECT id FROM posts WHERE posts.slug = ?)", slug)
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return writeError(err)
	}
	return r.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error
}

func (r *commentRepository) GetByID(ctx context.Context, postSlug string, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := readDB(r.db).WithContext(ctx).
		Scopes(onPost(postSlug)).
		Preload("Author").
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, postSlug string, limit, offset int) ([]models.Comment, int64, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).Scopes(onPost(postSlug)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if total == 0 {
		return []models.Comment{}, 0, nil
	}

	var comments []models.Comment
	err := base.
		Preload("Author").
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error; err != nil {
		return writeError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
