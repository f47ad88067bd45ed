package catalog

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	// ErrCodeInvalidID indicates a dataset ID that is blank or contains the
	// qualifier separator.
	ErrCodeInvalidID ErrorCode = "INVALID_ID"

	// ErrCodeDuplicateID indicates the ID is already registered.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// ErrCodeNotFound indicates no dataset is registered under the ID.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidKind indicates an unsupported dataset kind.
	ErrCodeInvalidKind ErrorCode = "INVALID_KIND"
)

// Error is returned by catalog operations.
type Error struct {
	Code    ErrorCode
	ID      string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (dataset=%q)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound returns true if err is a catalog NOT_FOUND error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsDuplicate returns true if err is a catalog DUPLICATE_ID error.
func IsDuplicate(err error) bool {
	return hasCode(err, ErrCodeDuplicateID)
}

// IsInvalidID returns true if err is a catalog INVALID_ID error.
func IsInvalidID(err error) bool {
	return hasCode(err, ErrCodeInvalidID)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
