package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every failure the services return wraps exactly one of
// these, so handlers can map them to a status with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrPersistence  = errors.New("persistence failure")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Unauthorizedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// Persistence wraps a store error, keeping the cause for logs while callers
// only ever match on ErrPersistence.
func Persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// Status maps an error kind onto its HTTP status. Unknown errors are
// treated as internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrNotFound):
		return 404
	default:
		return 500
	}
}
