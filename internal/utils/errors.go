package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// APIError is an error with the HTTP status and machine code it maps to.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string, details any) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		Details:    details,
	}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
	}
}

func NewUnavailableError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       "UNAVAILABLE",
		Message:    message,
	}
}

// NewInternalError hides err from the client; callers log it.
func NewInternalError(err error) *APIError {
	return &APIError{
		StatusCode: fiber.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		Err:        err,
	}
}

// WriteError sends apiErr in the {success:false, error} envelope.
func WriteError(c fiber.Ctx, apiErr *APIError) error {
	body := fiber.Map{
		"success": false,
		"error":   apiErr.Message,
		"code":    apiErr.Code,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	return c.Status(apiErr.StatusCode).JSON(body)
}

// ErrorHandler is Fiber's global error handler for errors returned by
// handlers and middleware.
func ErrorHandler(c fiber.Ctx, err error) error {
	var apiErr *APIError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &fiberErr):
		apiErr = &APIError{StatusCode: fiberErr.Code, Code: "HTTP_ERROR", Message: fiberErr.Message}
	default:
		apiErr = NewInternalError(err)
	}
	return WriteError(c, apiErr)
}
