package service

import (
	"errors"
	"fmt"
)

// ErrRequestInProgress is returned while another request with the same
// idempotency key is being processed.
var ErrRequestInProgress = errors.New("a request with this idempotency key is in progress")

// ValidationError reports a bad payload or a reference to a missing row.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
