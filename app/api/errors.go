package api

import (
	"errors"
	"fmt"
	"log"

	"legalrag/compose"
	"legalrag/retrieve"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns typed errors into distinguishable responses: the caller
// must be able to tell "try again" (retrieval/composition outage) from bad
// input. The orchestrator never reaches this path with a fabricated answer.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}
	if errors.Is(err, retrieve.ErrUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrRetrievalUnavailable())
	}
	if errors.Is(err, compose.ErrFailed) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrCompositionFailed())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}

	log.Printf("[API] request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, "internal server error"))
}

type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid request",
	}
}

// ErrMalformedInput rejects an absent or empty question before any
// downstream call is made.
func ErrMalformedInput() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Kind:    "malformed_input",
		Message: "question is required",
	}
}

// ErrRetrievalUnavailable signals that the index or embedding service could
// not be reached; no answer is produced without evidence.
func ErrRetrievalUnavailable() Error {
	return Error{
		Code:    fiber.StatusServiceUnavailable,
		Kind:    "retrieval_unavailable",
		Message: "evidence retrieval is unavailable, please retry",
	}
}

// ErrCompositionFailed signals that the completion service failed after
// retries were exhausted.
func ErrCompositionFailed() Error {
	return Error{
		Code:    fiber.StatusBadGateway,
		Kind:    "composition_failed",
		Message: "answer composition failed, please retry",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}
