// Package middleware provides the HTTP middleware shared by the API routes.
package middleware

import (
	"errors"
	"strings"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	// LocalsUserID holds the authenticated user id (uint).
	LocalsUserID = "userID"
	// LocalsRequester holds the models.Requester for the request.
	LocalsRequester = "requester"
	// LocalsTokenID holds the jti of the access token used.
	LocalsTokenID = "tokenID"
)

var (
	// ErrNoCredentials means the request carried no Authorization header.
	ErrNoCredentials = errors.New("authentication credentials were not provided")
	// ErrMalformedHeader means the Authorization header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("authorization header must be 'Bearer <token>'")
)

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}

// SetRequester stores the requester in locals and its id in the log context.
func SetRequester(c *fiber.Ctx, r models.Requester) {
	c.Locals(LocalsRequester, r)
	if !r.IsAnonymous() {
		c.Locals(LocalsUserID, r.UserID)
		c.SetUserContext(WithUserID(c.UserContext(), r.UserID))
	}
}

// RequesterFrom returns the requester stored by SetRequester, or anonymous.
func RequesterFrom(c *fiber.Ctx) models.Requester {
	if r, ok := c.Locals(LocalsRequester).(models.Requester); ok {
		return r
	}
	return models.Anonymous()
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if RequesterFrom(c).IsAnonymous() {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(
				"Authentication credentials were not provided.",
			))
		}
		return c.Next()
	}
}
