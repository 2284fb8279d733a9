package server

import (
	"quill/internal/middleware"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register
// @Description Create an account and return it with a fresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration details"
// @Success 201 {object} service.RegisterResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	result, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/v1/auth/login
// @Summary Login
// @Description Exchange credentials for an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Credentials"
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	pair, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(pair)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} models.AccessToken
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	access, err := s.authService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(access)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Logout
// @Description Blacklist the given refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	message, err := s.authService.Logout(c.UserContext(), middleware.RequesterFrom(c), req.Refresh)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetProfile handles GET /api/v1/auth/profile
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.authService.GetProfile(c.UserContext(), middleware.RequesterFrom(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT and PATCH /api/v1/auth/profile
// @Summary Update own profile
// @Description Only email, first_name, last_name and is_author are writable
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileInput true "Profile fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/profile [put]
// @Router /auth/profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		return s.fail(c, err)
	}

	profile, err := s.authService.UpdateProfile(c.UserContext(), middleware.RequesterFrom(c), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}
