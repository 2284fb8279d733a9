package service

import (
	"context"
	"time"

	"quill/internal/models"
	"quill/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	updateFn             func(context.Context, *models.Post) error
	deleteFn             func(context.Context, uint) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	getVisibleBySlugFn   func(context.Context, string, models.Requester) (*models.Post, error)
	getPublishedBySlugFn func(context.Context, string) (*models.Post, error)
	listFn               func(context.Context, repository.PostQuery) ([]models.Post, int64, error)
	countPublishedFn     func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetVisibleBySlug(ctx context.Context, slug string, r models.Requester) (*models.Post, error) {
	return s.getVisibleBySlugFn(ctx, slug, r)
}
func (s *postRepoStub) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPublishedBySlugFn(ctx, slug)
}
func (s *postRepoStub) List(ctx context.Context, q repository.PostQuery) ([]models.Post, int64, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) CountPublishedByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countPublishedFn(ctx, authorID)
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn    func(context.Context, *models.Category) error
	getByIDFn   func(context.Context, uint) (*models.Category, error)
	getBySlugFn func(context.Context, string) (*models.Category, error)
	getByNameFn func(context.Context, string) (*models.Category, error)
	listFn      func(context.Context) ([]models.Category, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return s.getByNameFn(ctx, name)
}
func (s *categoryRepoStub) ListWithCounts(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn  func(context.Context, *models.Comment) error
	getByIDFn func(context.Context, string, uint) (*models.Comment, error)
	listFn    func(context.Context, string, int, int) ([]models.Comment, int64, error)
	updateFn  func(context.Context, *models.Comment) error
	deleteFn  func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, postSlug string, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, postSlug, id)
}
func (s *commentRepoStub) List(ctx context.Context, postSlug string, limit, offset int) ([]models.Comment, int64, error) {
	return s.listFn(ctx, postSlug, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// userRepoStub keeps users in memory.
type userRepoStub struct {
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[uint]*models.User), nextID: 1}
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return models.NewFieldError("username", "A user with that username already exists.")
		}
	}
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.nextID++
	stored := *user
	s.users[user.ID] = &stored
	return nil
}
func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *u
	copied.Password = ""
	return &copied, nil
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}
func (s *userRepoStub) UpdateProfile(_ context.Context, user *models.User) error {
	stored, ok := s.users[user.ID]
	if !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	stored.Email, stored.FirstName, stored.LastName, stored.IsAuthor = user.Email, user.FirstName, user.LastName, user.IsAuthor
	return nil
}
func (s *userRepoStub) SetAuthor(ctx context.Context, username string, isAuthor bool) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.users[u.ID].IsAuthor = isAuthor
	return s.GetByID(ctx, u.ID)
}
func (s *userRepoStub) ListAuthors(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsAuthor {
			out = append(out, *u)
		}
	}
	return out, nil
}

// tokenRepoStub keeps revoked jtis in memory.
type tokenRepoStub struct {
	revoked map[string]models.BlacklistedToken
	calls   int
}

func newTokenRepoStub() *tokenRepoStub {
	return &tokenRepoStub{revoked: make(map[string]models.BlacklistedToken)}
}

func (s *tokenRepoStub) Blacklist(_ context.Context, token *models.BlacklistedToken) error {
	s.calls++
	if _, ok := s.revoked[token.JTI]; !ok {
		s.revoked[token.JTI] = *token
	}
	return nil
}
func (s *tokenRepoStub) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := s.revoked[jti]
	return ok, nil
}
func (s *tokenRepoStub) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for jti, t := range s.revoked {
		if t.ExpiresAt.Before(now) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n, nil
}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }
func boolPtr(b bool) *bool    { return &b }
