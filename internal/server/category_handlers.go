package server

import "github.com/gofiber/fiber/v2"

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Description Every category with its published post count, ordered by name
// @Tags categories
// @Produce json
// @Success 200 {array} models.CategoryWithCount
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /api/v1/categories/:slug
// @Summary Get category
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.CategoryWithCount
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{slug} [get]
func (s *Server) GetCategory(c *fiber.Ctx) error {
	category, err := s.categoryService.GetCategory(c.UserContext(), c.Params("slug"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(category)
}
