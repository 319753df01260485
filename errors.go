package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingOrganization is returned when an operation is invoked without an
// organization id. This is a programming error in the caller, never defaulted.
var ErrMissingOrganization = errors.New("organization id is required")

// ErrorType classifies store faults.
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
	ErrUnavailable   ErrorType = "unavailable"
)

// Error represents a storage-related error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a store not-found fault.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == ErrNotFound
}

// ValidationError carries every human-readable problem found in a caller's
// input. It is returned before any store call is made.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid event input: " + strings.Join(e.Problems, "; ")
}
