package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Error is the JSON body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// NewError creates an API error with the given status code.
func NewError(code int, msg string) Error {
	return Error{Code: code, Message: msg}
}

// ErrBadRequest is returned when the body is not valid JSON.
func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, "invalid JSON request")
}

// ValidationError lists request fields that failed validation.
type ValidationError struct {
	Status int               `json:"code"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError creates a 422 validation error.
func NewValidationError(errs map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errs,
	}
}

// ErrorHandler maps handler errors to status codes. Domain errors are
// classified with errors.Is so wrapping in services does not matter.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		apiErr   Error
		valErr   ValidationError
		fiberErr *fiber.Error
	)
	switch {
	case errors.As(err, &apiErr):
		return c.Status(apiErr.Code).JSON(apiErr)
	case errors.As(err, &valErr):
		return c.Status(valErr.Status).JSON(valErr)
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}

	code := statusFor(err)
	logger.Warn("%s %s failed with %d: %v", c.Method(), c.Path(), code, err)
	return c.Status(code).JSON(NewError(code, err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests
	// Upstream timeouts arrive wrapped in an UpstreamError.
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		// Configuration errors land here too: the server is misconfigured.
		return fiber.StatusInternalServerError
	}
}

// ErrNotFound is returned for unknown routes.
func ErrNotFound(path string) Error {
	return NewError(fiber.StatusNotFound, fmt.Sprintf("route %s not found", path))
}
