package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/queryir"
)

// QueryError is the single error type surfaced by query evaluation.
//
// Query errors fall into two categories:
//   - Invalid query: grammar violation, unknown field, schema mix, malformed
//     pattern, inconsistent columns/order/transformations, unknown dataset
//   - Result too large: the filtered rows or the groups exceed the limits
//
// No query error is retryable: evaluation is deterministic.
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context (e.g. the offending path, counts).
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeInvalidQuery indicates the query failed validation.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	// ErrCodeResultTooLarge indicates a size limit was exceeded.
	ErrCodeResultTooLarge ErrorCode = "RESULT_TOO_LARGE"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsInvalidQuery returns true if the error is an invalid query error.
// Uses errors.As to handle wrapped errors.
func IsInvalidQuery(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeInvalidQuery
	}
	return false
}

// IsResultTooLarge returns true if the error is a result size error.
// Uses errors.As to handle wrapped errors.
func IsResultTooLarge(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeResultTooLarge
	}
	return false
}

// NewInvalidQueryError wraps a validation failure.
func NewInvalidQueryError(err error) *QueryError {
	qe := &QueryError{
		Code:    ErrCodeInvalidQuery,
		Message: err.Error(),
		Err:     err,
	}
	var verr *queryir.ValidationError
	if errors.As(err, &verr) && verr.Path != "" {
		qe.Details = map[string]string{"path": verr.Path}
	}
	return qe
}

// invalidQueryf creates an invalid query error without an underlying cause.
func invalidQueryf(format string, args ...any) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidQuery,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewResultTooLargeError reports that count units exceeded limit.
// unit is "rows" for the ungrouped cap and "groups" for the grouped cap.
func NewResultTooLargeError(count, limit int, unit string) *QueryError {
	return &QueryError{
		Code:    ErrCodeResultTooLarge,
		Message: fmt.Sprintf("query produced more than %d %s (%d)", limit, unit, count),
		Details: map[string]string{
			"count": fmt.Sprintf("%d", count),
			"limit": fmt.Sprintf("%d", limit),
			"unit":  unit,
		},
	}
}
