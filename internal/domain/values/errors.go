package values

import (
	"errors"
	"fmt"
)

// Validation error kinds. Match them with errors.Is.
var (
	ErrEmpty         = errors.New("empty")
	ErrTooShort      = errors.New("too short")
	ErrTooLong       = errors.New("too long")
	ErrInvalidFormat = errors.New("invalid format")
)

// ValidationError is returned by value constructors. Limit carries the
// violated bound for ErrTooShort/ErrTooLong and is zero otherwise.
type ValidationError struct {
	Field string
	Kind  error
	Limit int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrEmpty:
		return fmt.Sprintf("%s can't be empty", e.Field)
	case ErrTooShort:
		return fmt.Sprintf("%s should be greater than or equal to %d", e.Field, e.Limit)
	case ErrTooLong:
		return fmt.Sprintf("%s should be less than or equal to %d", e.Field, e.Limit)
	case ErrInvalidFormat:
		return fmt.Sprintf("invalid %s format", e.Field)
	default:
		return fmt.Sprintf("invalid %s", e.Field)
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(field string, kind error, limit int) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Limit: limit}
}
