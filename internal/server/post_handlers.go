package server

import (
	"quill/internal/middleware"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) respondPostPage(c *fiber.Ctx, p pageRequest, page *service.PostPage) error {
	envelope, err := paginate(c, p, page.Total, page.Posts)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(envelope)
}

// ListPosts handles GET /api/v1/posts
// @Summary List posts
// @Description Published posts, plus the requester's own drafts when they are an author
// @Tags posts
// @Produce json
// @Param search query string false "Terms matched against title, content and excerpt"
// @Param ordering query string false "created_at, updated_at or title; prefix with - for descending"
// @Param status query string false "draft or published"
// @Param category__slug query string false "Category slug"
// @Param author__username query string false "Author username"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} models.Page[models.PostSummary]
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	p, err := s.parsePage(c)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Requester: middleware.RequesterFrom(c),
		Filter: repository.PostFilter{
			Status:         c.Query("status"),
			CategorySlug:   c.Query("category__slug"),
			AuthorUsername: c.Query("author__username"),
		},
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondPostPage(c, p, page)
}

// ListPostsByCategory handles GET /api/v1/posts/category/:slug
// @Summary Published posts in a category
// @Tags posts
// @Produce json
// @Param slug path string true "Category slug"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.PostSummary]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/category/{slug} [get]
func (s *Server) ListPostsByCategory(c *fiber.Ctx) error {
	p, err := s.parsePage(c)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.postService.ListByCategory(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"), p.Limit(), p.Offset())
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondPostPage(c, p, page)
}

// ListPostsByAuthor handles GET /api/v1/posts/author/:username
// @Summary Published posts by an author
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.PostSummary]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/author/{username} [get]
func (s *Server) ListPostsByAuthor(c *fiber.Ctx) error {
	p, err := s.parsePage(c)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.postService.ListByAuthor(c.UserContext(), middleware.RequesterFrom(c), c.Params("username"), p.Limit(), p.Offset())
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondPostPage(c, p, page)
}

// ListMyPosts handles GET /api/v1/posts/my-posts
// @Summary Own posts
// @Description Every post of the requester regardless of status
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.PostSummary]
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/my-posts [get]
func (s *Server) ListMyPosts(c *fiber.Ctx) error {
	p, err := s.parsePage(c)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.postService.ListMine(c.UserContext(), middleware.RequesterFrom(c), p.Limit(), p.Offset())
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondPostPage(c, p, page)
}

// GetPost handles GET /api/v1/posts/:slug
// @Summary Get post
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/v1/posts
// @Summary Create post
// @Description Authors only; the requester becomes the author
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PostInput true "Post"
// @Success 201 {object} models.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), middleware.RequesterFrom(c), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/v1/posts/:slug
// @Summary Replace post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param request body service.PostInput true "Post"
// @Success 200 {object} models.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	return s.updatePost(c, false)
}

// PartialUpdatePost handles PATCH /api/v1/posts/:slug
// @Summary Update post fields
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param request body service.PostInput true "Fields to change"
// @Success 200 {object} models.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [patch]
func (s *Server) PartialUpdatePost(c *fiber.Ctx) error {
	return s.updatePost(c, true)
}

func (s *Server) updatePost(c *fiber.Ctx, partial bool) error {
	var req service.PostInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"), req, partial)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/v1/posts/:slug
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
