package service

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is the single failure reported for unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrForbidden is returned when the acting user does not own the target record.
var ErrForbidden = errors.New("forbidden")

// ErrValidation marks input that failed validation; wrap it with ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
