package agency

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the addressed row does not exist
var ErrNotFound = errors.New("resource not found")

// ValidationError reports malformed or missing input. It maps to HTTP 400,
// distinct from the 422 reported for store failures on well-formed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
