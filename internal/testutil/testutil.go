// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"quill/internal/cache"
	"quill/internal/database"
	"quill/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database with foreign keys on.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// NewStore returns a cache store backed by miniredis.
func NewStore(t *testing.T) (*miniredis.Miniredis, *cache.Store) {
	t.Helper()
	mr, rdb := NewRedis(t)
	return mr, cache.New(rdb)
}

// Password is the plaintext password of users made by CreateUser.
const Password = "correct-horse-battery"

// CreateUser inserts a user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, username string, isAuthor bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsAuthor: isAuthor,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCategory inserts a category named name.
func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreatePost inserts a post with the given status.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, title string, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Content:  "Content of " + title,
		Status:   status,
		AuthorID: author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	require.NoError(t, db.Omit("Author", "Category").Create(post).Error)
	return post
}

// CreateComment inserts a comment by author on post.
func CreateComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: content, AuthorID: author.ID, PostID: post.ID}
	require.NoError(t, db.Omit("Author", "Post").Create(comment).Error)
	return comment
}
