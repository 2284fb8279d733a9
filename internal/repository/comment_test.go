package repository

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "jack", true)
	reader := testutil.CreateUser(t, db, "kate", false)
	first := testutil.CreatePost(t, db, author, nil, "First Post", models.StatusPublished)
	second := testutil.CreatePost(t, db, author, nil, "Second Post", models.StatusPublished)
	testutil.CreateComment(t, db, reader, first, "older")

	t.Run("create loads the author", func(t *testing.T) {
		comment := &models.Comment{Content: "newer", AuthorID: reader.ID, PostID: first.ID}
		require.NoError(t, repo.Create(ctx, comment))
		assert.Equal(t, "kate", comment.Author.Username)
	})

	t.Run("list scoped by post slug newest first", func(t *testing.T) {
		comments, total, err := repo.List(ctx, "first-post", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, comments, 2)
		assert.Equal(t, "newer", comments[0].Content)
		assert.Equal(t, "older", comments[1].Content)
	})

	t.Run("unknown slug lists nothing", func(t *testing.T) {
		comments, total, err := repo.List(ctx, "missing", 10, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, comments)
	})

	t.Run("empty slug lists every comment", func(t *testing.T) {
		testutil.CreateComment(t, db, author, second, "elsewhere")
		_, total, err := repo.List(ctx, "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("get is scoped by post slug", func(t *testing.T) {
		comments, _, err := repo.List(ctx, "second-post", 10, 0)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		id := comments[0].ID

		got, err := repo.GetByID(ctx, "second-post", id)
		require.NoError(t, err)
		assert.Equal(t, "elsewhere", got.Content)

		_, err = repo.GetByID(ctx, "first-post", id)
		assert.True(t, IsNotFound(err))
	})

	t.Run("update and delete", func(t *testing.T) {
		comments, _, err := repo.List(ctx, "second-post", 10, 0)
		require.NoError(t, err)
		comment := comments[0]

		comment.Content = "edited"
		require.NoError(t, repo.Update(ctx, &comment))
		got, err := repo.GetByID(ctx, "second-post", comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)

		require.NoError(t, repo.Delete(ctx, comment.ID))
		assert.True(t, IsNotFound(repo.Delete(ctx, comment.ID)))
	})
}
