// Package apperr defines the error kinds shared by repositories, services and handlers.
// Callers wrap a kind with context using fmt.Errorf("...: %w", ErrX) and test with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound marks a missing user, cart, book or order.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation the entity's current state forbids.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput marks malformed or out of range arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks failed authentication.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusCode maps err to the HTTP status the API answers with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
