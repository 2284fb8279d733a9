package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByUsername includes the password hash and bypasses the cache.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetAuthor(ctx context.Context, username string, isAuthor bool) (*models.User, error)
	ListAuthors(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewUserRepository returns a UserRepository. store may be nil.
func NewUserRepository(db *gorm.DB, store *cache.Store) UserRepository {
	return &userRepository{db: db, cache: store}
}

const duplicateUsernameMessage = "A user with that username already exists."

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
			return models.NewInternalError(err)
		}
		if n > 0 {
			return models.NewFieldError("username", duplicateUsernameMessage)
		}
		return tx.Create(user).Error
	})
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return models.NewFieldError("username", duplicateUsernameMessage)
	}
	return writeError(err)
}

// GetByID serves from the user cache when Redis is available. The cached
// copy never carries the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := cache.Aside(ctx, r.cache, "user", cache.UserKey(id), cache.UserTTL, func() (models.User, error) {
		var u models.User
		if err := readDB(r.db).WithContext(ctx).First(&u, id).Error; err != nil {
			return u, lookupError(err, "User", id)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupError(err, "User", username)
	}
	return &user, nil
}

// UpdateProfile writes the editable profile columns only.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("email", "first_name", "last_name", "is_author").
		Updates(user).Error
	if err != nil {
		return writeError(err)
	}
	r.cache.Invalidate(ctx, cache.UserKey(user.ID))
	return nil
}

func (r *userRepository) SetAuthor(ctx context.Context, username string, isAuthor bool) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(user).Update("is_author", isAuthor).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	r.cache.Invalidate(ctx, cache.UserKey(user.ID))
	user.Password = ""
	return user, nil
}

func (r *userRepository) ListAuthors(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Where("is_author = ?", true).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IsNotFound reports whether err is a not-found AppError.
func IsNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
