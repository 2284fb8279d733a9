package repository

import (
	"context"
	"testing"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "carol", Password: "x"}))

	err := repo.Create(ctx, &models.User{Username: "carol", Password: "y"})
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, []string{"A user with that username already exists."}, appErr.Fields["username"])
}

func TestUserRepository_GetByID_UsesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	mr, store := testutil.NewStore(t)
	repo := NewUserRepository(db, store)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "dave", true)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthor)
	assert.Empty(t, got.Password)
	assert.True(t, mr.Exists(cache.UserKey(user.ID)))

	// A write that bypasses the repository is not seen until the entry expires.
	require.NoError(t, db.Model(user).Update("is_author", false).Error)
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthor)

	mr.FastForward(cache.UserTTL)
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAuthor)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := NewUserRepository(testutil.NewTestDB(t), nil)
	_, err := repo.GetByID(context.Background(), 99)
	assert.True(t, IsNotFound(err))
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	testutil.CreateUser(t, db, "erin", false)

	user, err := repo.GetByUsername(context.Background(), "erin")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Password)

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.True(t, IsNotFound(err))
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	mr, store := testutil.NewStore(t)
	repo := NewUserRepository(db, store)
	ctx := context.Background()
	created := testutil.CreateUser(t, db, "frank", false)

	user, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.UserKey(user.ID)))

	user.FirstName = "Frank"
	user.IsAuthor = true
	require.NoError(t, repo.UpdateProfile(ctx, user))
	assert.False(t, mr.Exists(cache.UserKey(user.ID)))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Frank", stored.FirstName)
	assert.True(t, stored.IsAuthor)
	assert.Equal(t, created.Password, stored.Password, "the password hash is untouched")
}

func TestUserRepository_SetAuthorAndListAuthors(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()
	testutil.CreateUser(t, db, "gina", false)
	testutil.CreateUser(t, db, "hank", true)

	user, err := repo.SetAuthor(ctx, "gina", true)
	require.NoError(t, err)
	assert.True(t, user.IsAuthor)

	_, err = repo.SetAuthor(ctx, "nobody", true)
	assert.True(t, IsNotFound(err))

	authors, err := repo.ListAuthors(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, a := range authors {
		names = append(names, a.Username)
	}
	assert.ElementsMatch(t, []string{"gina", "hank"}, names)
}
