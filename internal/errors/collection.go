package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

// AlreadyExistsError is returned when a book is already part of a collection.
type AlreadyExistsError struct {
	Collection string
	Title      string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%q is already in %s", e.Title, e.Collection)
}

// NewAlreadyExistsError creates an AlreadyExistsError.
func NewAlreadyExistsError(collection, title string) *AlreadyExistsError {
	return &AlreadyExistsError{Collection: collection, Title: title}
}

// IsAlreadyExistsError reports whether err is an AlreadyExistsError (even when wrapped).
func IsAlreadyExistsError(err error) bool {
	var existsErr *AlreadyExistsError
	return stdErrors.As(err, &existsErr)
}

// NotFoundError is returned when no book in a collection matches a title or position.
type NotFoundError struct {
	Collection string
	Title      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q not found in %s", e.Title, e.Collection)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(collection, title string) *NotFoundError {
	return &NotFoundError{Collection: collection, Title: title}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var notFoundErr *NotFoundError
	return stdErrors.As(err, &notFoundErr)
}

// ValidationError lists the required fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// NewValidationError creates a ValidationError for the given field names.
func NewValidationError(missing ...string) *ValidationError {
	return &ValidationError{Missing: missing}
}

// IsValidationError reports whether err is a ValidationError (even when wrapped).
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return stdErrors.As(err, &validationErr)
}
