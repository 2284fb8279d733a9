package server

import (
	"log/slog"
	"net/url"
	"strconv"

	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	maxPageSize    = 100
	msgInvalidPage = "Invalid page."
	msgInvalidBody = "Invalid request body"
)

// pageRequest is the page-number window parsed from ?page and ?page_size.
type pageRequest struct {
	Page int
	Size int
}

func (p pageRequest) Limit() int  { return p.Size }
func (p pageRequest) Offset() int { return (p.Page - 1) * p.Size }

// parsePage reads the pagination query. A malformed page is a 404, as is any
// page beyond the end, which is checked by paginate.
func (s *Server) parsePage(c *fiber.Ctx) (pageRequest, error) {
	p := pageRequest{Page: 1, Size: s.config.PageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, models.NewNotFoundMessage(msgInvalidPage)
		}
		p.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Size = min(n, maxPageSize)
		}
	}
	return p, nil
}

// paginate wraps results in the page envelope with absolute next/previous links.
func paginate[T any](c *fiber.Ctx, p pageRequest, total int64, results []T) (*models.Page[T], error) {
	if p.Page > 1 && int64(p.Offset()) >= total {
		return nil, models.NewNotFoundMessage(msgInvalidPage)
	}
	if results == nil {
		results = []T{}
	}

	page := &models.Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Size) < total {
		page.Next = pageLink(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageLink(c, p.Page-1)
	}
	return page, nil
}

// pageLink rebuilds the request URL pointing at page n. Page 1 drops the
// page parameter.
func pageLink(c *fiber.Ctx, n int) *string {
	u, err := url.Parse(c.BaseURL() + c.OriginalURL())
	if err != nil {
		return nil
	}
	q := u.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

// parseID reads a positive integer route parameter. Anything else cannot
// name a record and is reported as not found.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundMessage("Not found.")
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dest.
func bindJSON(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError(msgInvalidBody)
	}
	return nil
}

// fail writes err as an error response with the status its code maps to.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, appErr.Status(), appErr)
}
