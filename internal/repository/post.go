package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetVisibleBySlug(ctx context.Context, slug string, requester models.Requester) (*models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]models.Post, int64, error)
	CountPublishedByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const (
	duplicateTitleMessage = "A post with this title already exists."
	duplicateSlugMessage  = "A post with a similar title already exists."
)

func titleTaken(tx *gorm.DB, title string, excludeID uint) (bool, error) {
	q := tx.Model(&models.Post{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts post after checking that no other post has the same title.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := titleTaken(tx, post.Title, 0)
		if err != nil {
			return models.NewInternalError(err)
		}
		if taken {
			return models.NewFieldError("title", duplicateTitleMessage)
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewFieldError("title", duplicateSlugMessage)
			}
			return writeError(err)
		}
		return nil
	})
}

// Update saves every column of post. The title must stay unique among other posts.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := titleTaken(tx, post.Title, post.ID)
		if err != nil {
			return models.NewInternalError(err)
		}
		if taken {
			return models.NewFieldError("title", duplicateTitleMessage)
		}
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewFieldError("title", duplicateTitleMessage)
			}
			return writeError(err)
		}
		return nil
	})
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Scopes(withCommentsCount, withPostRelations).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

// GetVisibleBySlug returns the post only if the requester may address it.
func (r *postRepository) GetVisibleBySlug(ctx context.Context, slug string, requester models.Requester) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Scopes(withCommentsCount, withPostRelations, VisibleTo(requester)).
		Where("posts.slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", slug)
	}
	return &post, nil
}

func (r *postRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Scopes(Published).
		Where("posts.slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", slug)
	}
	return &post, nil
}

// List returns one page of posts matching q and the total match count.
func (r *postRepository) List(ctx context.Context, q PostQuery) ([]models.Post, int64, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{})
	if q.OwnerID != 0 {
		base = base.Scopes(OwnedBy(q.OwnerID))
	} else {
		base = base.Scopes(VisibleTo(q.Requester))
	}
	if q.PublishedOnly {
		base = base.Scopes(Published)
	}
	base = base.Scopes(Filtered(q.Filter), Searched(q.Search)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if total == 0 {
		return []models.Post{}, 0, nil
	}

	var posts []models.Post
	err := base.
		Scopes(withPostRelations, Ordered(q.Ordering)).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) CountPublishedByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Scopes(Published, OwnedBy(authorID)).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
