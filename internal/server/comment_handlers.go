package server

import (
	"quill/internal/middleware"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/v1/posts/:slug/comments
// @Summary List comments on a post
// @Description Newest first; an unknown post yields an empty page
// @Tags comments
// @Produce json
// @Param slug path string true "Post slug"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} models.Page[models.CommentView]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	p, err := s.parsePage(c)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.commentService.ListComments(c.UserContext(), c.Params("slug"), p.Limit(), p.Offset())
	if err != nil {
		return s.fail(c, err)
	}
	envelope, err := paginate(c, p, page.Total, page.Comments)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(envelope)
}

// GetComment handles GET /api/v1/posts/:slug/comments/:id
// @Summary Get comment
// @Tags comments
// @Produce json
// @Param slug path string true "Post slug"
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	comment, err := s.commentService.GetComment(c.UserContext(), c.Params("slug"), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/v1/posts/:slug/comments
// @Summary Comment on a post
// @Description The post must be published
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.CommentInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/v1/posts/:slug/comments/:id
// @Summary Replace comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	return s.updateComment(c, false)
}

// PartialUpdateComment handles PATCH /api/v1/posts/:slug/comments/:id
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments/{id} [patch]
func (s *Server) PartialUpdateComment(c *fiber.Ctx) error {
	return s.updateComment(c, true)
}

func (s *Server) updateComment(c *fiber.Ctx, partial bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req service.CommentInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"), id, req, partial)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/v1/posts/:slug/comments/:id
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.commentService.DeleteComment(c.UserContext(), middleware.RequesterFrom(c), c.Params("slug"), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
