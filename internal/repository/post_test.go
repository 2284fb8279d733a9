package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Delete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 42)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CountPublishedByAuthor(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE posts.status = $1 AND posts.author_id = $2`)).
		WithArgs("published", 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountPublishedByAuthor(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type postFixture struct {
	repo       PostRepository
	alice      *models.User
	bob        *models.User
	reader     *models.User
	tech       *models.Category
	life       *models.Category
	alicePub   *models.Post
	aliceDraft *models.Post
	bobPub     *models.Post
	bobDraft   *models.Post
}

func newPostFixture(t *testing.T) *postFixture {
	db := testutil.NewTestDB(t)
	f := &postFixture{repo: NewPostRepository(db)}
	f.alice = testutil.CreateUser(t, db, "alice", true)
	f.bob = testutil.CreateUser(t, db, "bob", true)
	f.reader = testutil.CreateUser(t, db, "reader", false)
	f.tech = testutil.CreateCategory(t, db, "Tech")
	f.life = testutil.CreateCategory(t, db, "Life")
	f.alicePub = testutil.CreatePost(t, db, f.alice, f.tech, "Alice Published", models.StatusPublished)
	f.aliceDraft = testutil.CreatePost(t, db, f.alice, f.tech, "Alice Draft", models.StatusDraft)
	f.bobPub = testutil.CreatePost(t, db, f.bob, f.life, "Bob Published", models.StatusPublished)
	f.bobDraft = testutil.CreatePost(t, db, f.bob, f.life, "Bob Draft", models.StatusDraft)
	testutil.CreateComment(t, db, f.reader, f.alicePub, "nice")
	testutil.CreateComment(t, db, f.bob, f.alicePub, "agreed")
	return f
}

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostRepository_List_Visibility(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		requester models.Requester
		want      []string
	}{
		{"anonymous", models.Anonymous(), []string{"Bob Published", "Alice Published"}},
		{"reader", models.Requester{UserID: f.reader.ID}, []string{"Bob Published", "Alice Published"}},
		{"author sees own drafts", models.Requester{UserID: f.alice.ID, IsAuthor: true},
			[]string{"Bob Published", "Alice Draft", "Alice Published"}},
		{"demoted author loses drafts", models.Requester{UserID: f.alice.ID},
			[]string{"Bob Published", "Alice Published"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := f.repo.List(ctx, PostQuery{Requester: tt.requester, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			assert.Equal(t, tt.want, titles(posts))
		})
	}
}

func TestPostRepository_List_FiltersSearchOrdering(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := models.Requester{UserID: f.alice.ID, IsAuthor: true}

	posts, _, err := f.repo.List(ctx, PostQuery{Requester: alice, Filter: PostFilter{Status: "draft"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Draft"}, titles(posts))

	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, Filter: PostFilter{CategorySlug: "life"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Published"}, titles(posts))

	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, Filter: PostFilter{AuthorUsername: "bob"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Published"}, titles(posts))

	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, Search: "ALICE, published", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Published"}, titles(posts))

	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, Search: "100%", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, Ordering: "title", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Draft", "Alice Published", "Bob Published"}, titles(posts))
}

func TestPostRepository_List_Pagination(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	posts, total, err := f.repo.List(ctx, PostQuery{Ordering: "title", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"Bob Published"}, titles(posts))
	assert.Equal(t, "bob", posts[0].Author.Username)
	require.NotNil(t, posts[0].Category)
	assert.Equal(t, "life", posts[0].Category.Slug)
}

func TestPostRepository_List_OwnerAndPublishedOnly(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	posts, _, err := f.repo.List(ctx, PostQuery{OwnerID: f.bob.ID, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bob Published", "Bob Draft"}, titles(posts))

	alice := models.Requester{UserID: f.alice.ID, IsAuthor: true}
	posts, _, err = f.repo.List(ctx, PostQuery{Requester: alice, PublishedOnly: true, Filter: PostFilter{AuthorUsername: "alice"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Published"}, titles(posts))
}

func TestPostRepository_List_Empty(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t))

	posts, total, err := repo.List(context.Background(), PostQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_GetVisibleBySlug(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post, err := f.repo.GetVisibleBySlug(ctx, "alice-published", models.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, int64(2), post.CommentsCount)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Equal(t, "tech", post.Category.Slug)

	_, err = f.repo.GetVisibleBySlug(ctx, "alice-draft", models.Requester{UserID: f.bob.ID, IsAuthor: true})
	assert.True(t, IsNotFound(err))

	_, err = f.repo.GetVisibleBySlug(ctx, "alice-draft", models.Anonymous())
	assert.True(t, IsNotFound(err))

	post, err = f.repo.GetVisibleBySlug(ctx, "alice-draft", models.Requester{UserID: f.alice.ID, IsAuthor: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
}

func TestPostRepository_GetPublishedBySlug(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.repo.GetPublishedBySlug(ctx, "bob-draft")
	assert.True(t, IsNotFound(err))

	post, err := f.repo.GetPublishedBySlug(ctx, "bob-published")
	require.NoError(t, err)
	assert.Equal(t, f.bobPub.ID, post.ID)
}

func TestPostRepository_Create(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := &models.Post{Title: "Fresh Ideas", Content: strings.Repeat("a", 250), AuthorID: f.alice.ID, CategoryID: &f.tech.ID}
	require.NoError(t, f.repo.Create(ctx, post))
	assert.Equal(t, "fresh-ideas", post.Slug)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, strings.Repeat("a", 200)+"...", post.Excerpt)

	dup := &models.Post{Title: "Fresh Ideas", Content: "again", AuthorID: f.bob.ID}
	err := f.repo.Create(ctx, dup)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "title")

	clash := &models.Post{Title: "Fresh ideas!", Content: "slug clash", AuthorID: f.bob.ID}
	err = f.repo.Create(ctx, clash)
	assert.Contains(t, models.AsAppError(err).Fields, "title")

	blank := &models.Post{Title: "!!!", Content: "no slug", AuthorID: f.bob.ID}
	err = f.repo.Create(ctx, blank)
	assert.Contains(t, models.AsAppError(err).Fields, "title")
}

func TestPostRepository_Update(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post, err := f.repo.GetByID(ctx, f.alicePub.ID)
	require.NoError(t, err)

	post.Content = "edited"
	require.NoError(t, f.repo.Update(ctx, post), "keeping its own title is allowed")

	post.Title = "A Brand New Title"
	require.NoError(t, f.repo.Update(ctx, post))

	reloaded, err := f.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A Brand New Title", reloaded.Title)
	assert.Equal(t, "alice-published", reloaded.Slug)
	assert.Equal(t, int64(2), reloaded.CommentsCount)

	reloaded.Title = "Bob Published"
	err = f.repo.Update(ctx, reloaded)
	assert.Contains(t, models.AsAppError(err).Fields, "title")
}

func TestPostRepository_DeleteCascadesComments(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "writer", true)
	post := testutil.CreatePost(t, db, author, nil, "Short Lived", models.StatusPublished)
	testutil.CreateComment(t, db, author, post, "first")

	require.NoError(t, repo.Delete(context.Background(), post.ID))

	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}
