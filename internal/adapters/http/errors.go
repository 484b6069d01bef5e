package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "invalid_shape", msg)
}

// errTooManySessions returns a 429 error.
func errTooManySessions(c *fiber.Ctx, msg string) error {
	return newError(c, 429, "too_many_sessions", msg)
}

// writeError maps service and engine errors to API errors.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrShapeNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnknownShapeKind), errors.Is(err, domain.ErrUnknownEventKind):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		return errUnprocessable(c, err.Error())
	case errors.Is(err, domain.ErrTooManySessions):
		return errTooManySessions(c, err.Error())
	case errors.Is(err, usecases.ErrWorkspaceClosed):
		return errConflict(c, err.Error())
	}
	return errInternal(c, err.Error())
}
