package service

import (
	"context"
	"fmt"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	cache        *cache.Store
}

// PostInput is the writable part of a post. Nil fields were not supplied.
type PostInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	CategoryID *uint   `json:"category_id"`
	Image      *string `json:"image"`
	Status     *string `json:"status"`
}

type ListPostsInput struct {
	Requester models.Requester
	Filter    repository.PostFilter
	Search    string
	Ordering  string
	Limit     int
	Offset    int
}

// PostPage is one page of post summaries and the total match count.
type PostPage struct {
	Posts []models.PostSummary
	Total int64
}

func NewPostService(postRepo repository.PostRepository, categoryRepo repository.CategoryRepository, store *cache.Store) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		cache:        store,
	}
}

func (s *PostService) list(ctx context.Context, q repository.PostQuery) (*PostPage, error) {
	posts, total, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: models.MapSlice(posts, models.NewPostSummary), Total: total}, nil
}

// ListPosts lists the posts visible to the requester.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	return s.list(ctx, repository.PostQuery{
		Requester: in.Requester,
		Filter:    in.Filter,
		Search:    in.Search,
		Ordering:  in.Ordering,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
}

// ListByCategory lists published posts in the category.
func (s *PostService) ListByCategory(ctx context.Context, r models.Requester, slug string, limit, offset int) (*PostPage, error) {
	return s.list(ctx, repository.PostQuery{
		Requester:     r,
		PublishedOnly: true,
		Filter:        repository.PostFilter{CategorySlug: slug},
		Limit:         limit,
		Offset:        offset,
	})
}

// ListByAuthor lists published posts by the author.
func (s *PostService) ListByAuthor(ctx context.Context, r models.Requester, username string, limit, offset int) (*PostPage, error) {
	return s.list(ctx, repository.PostQuery{
		Requester:     r,
		PublishedOnly: true,
		Filter:        repository.PostFilter{AuthorUsername: username},
		Limit:         limit,
		Offset:        offset,
	})
}

// ListMine lists every post of the requester regardless of status.
func (s *PostService) ListMine(ctx context.Context, r models.Requester, limit, offset int) (*PostPage, error) {
	if err := RequireAuthenticated(r); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.PostQuery{OwnerID: r.UserID, Limit: limit, Offset: offset})
}

func (s *PostService) GetPost(ctx context.Context, r models.Requester, slug string) (*models.PostDetail, error) {
	post, err := s.postRepo.GetVisibleBySlug(ctx, slug, r)
	if err != nil {
		return nil, err
	}
	detail := models.NewPostDetail(post)
	return &detail, nil
}

// validatePostInput checks in. full requires every mandatory field, as on
// create and PUT.
func (s *PostService) validatePostInput(ctx context.Context, in PostInput, full bool) error {
	var errs fieldErrors
	if full || in.Title != nil {
		errs.requireText("title", in.Title, models.MaxTitleLength)
	}
	if full || in.Content != nil {
		errs.requireText("content", in.Content, 0)
	}
	errs.optionalText("excerpt", in.Excerpt, models.MaxExcerptLength)
	errs.optionalText("image", in.Image, models.MaxImageLength)
	if in.Status != nil && !models.PostStatus(*in.Status).Valid() {
		errs.add("status", fmt.Sprintf("%q is not a valid choice.", *in.Status))
	}
	switch {
	case in.CategoryID != nil:
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			if !repository.IsNotFound(err) {
				return err
			}
			errs.add("category_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *in.CategoryID))
		}
	case full:
		errs.add("category_id", msgRequired)
	}
	return errs.result()
}

func applyPostInput(post *models.Post, in PostInput) {
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.Image != nil {
		post.Image = *in.Image
	}
	if in.Status != nil {
		post.Status = models.PostStatus(*in.Status)
	}
	if in.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *in.CategoryID) {
		id := *in.CategoryID
		post.CategoryID = &id
		post.Category = nil
	}
}

// CreatePost stores a post authored by the requester.
func (s *PostService) CreatePost(ctx context.Context, r models.Requester, in PostInput) (detail *models.PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	if err := AuthorGate(r); err != nil {
		return nil, err
	}
	if err := s.validatePostInput(ctx, in, true); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: r.UserID}
	applyPostInput(post, in)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("post.id", int(post.ID)))
	observability.RecordWrite("post", "create")

	detail, err = s.reload(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx, categorySlug(detail.Category))
	return detail, nil
}

// UpdatePost applies in to the post with slug. partial selects PATCH semantics.
func (s *PostService) UpdatePost(ctx context.Context, r models.Requester, slug string, in PostInput, partial bool) (detail *models.PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UpdatePost", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.writablePost(ctx, r, slug)
	if err != nil {
		return nil, err
	}
	if err := s.validatePostInput(ctx, in, !partial); err != nil {
		return nil, err
	}

	previous := categorySlug(models.NewCategoryRef(post.Category))
	applyPostInput(post, in)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordWrite("post", "update")

	detail, err = s.reload(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx, previous, categorySlug(detail.Category))
	return detail, nil
}

func (s *PostService) DeletePost(ctx context.Context, r models.Requester, slug string) (err error) {
	ctx, span := observability.StartSpan(ctx, "service", "DeletePost", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.writablePost(ctx, r, slug)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	observability.RecordWrite("post", "delete")
	s.invalidateCategories(ctx, categorySlug(models.NewCategoryRef(post.Category)))
	return nil
}

// writablePost runs the checks that precede any post mutation: author-gate,
// then the visibility lookup, then owner-gate.
func (s *PostService) writablePost(ctx context.Context, r models.Requester, slug string) (*models.Post, error) {
	if err := AuthorGate(r); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetVisibleBySlug(ctx, slug, r)
	if err != nil {
		return nil, err
	}
	if err := OwnerGate(r, post.AuthorID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) reload(ctx context.Context, id uint) (*models.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := models.NewPostDetail(post)
	return &detail, nil
}

// invalidateCategories drops the cached category list and the cached
// categories with the given slugs.
func (s *PostService) invalidateCategories(ctx context.Context, slugs ...string) {
	keys := []string{cache.CategoriesKey}
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, cache.CategoryKey(slug))
		}
	}
	s.cache.Invalidate(ctx, keys...)
}

func categorySlug(c *models.CategoryRef) string {
	if c == nil {
		return ""
	}
	return c.Slug
}
