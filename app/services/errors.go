// Package services holds the business workflows behind the HTTP surface.
package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel domain errors. Services return these (usually wrapped with
// context); controllers translate them to HTTP via ErrorStatus.
var (
	// ErrNotFound: a referenced product, order, category or user is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden: the caller is authenticated but not authorized.
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientStock: an order line asked for more units than the
	// product has. A validation-class failure; never retried internally.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidState: an illegal order status transition was requested.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrConflict: a uniqueness constraint was violated (duplicate slug,
	// duplicate review, duplicate chat pair).
	ErrConflict = errors.New("conflict")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// ErrorStatus maps a service error to its HTTP status code.
func ErrorStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
