// Package errors defines the error taxonomy of the search engine: sentinel
// errors for each failure class plus AppError for carrying a message and an
// HTTP status across the API boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidQuery marks input that is empty or unusable after
	// normalization. Recovered at the API boundary, never fatal.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIndexLoad marks a missing, truncated, or corrupt index snapshot.
	// Fatal at startup; at reload time the previous snapshot stays live.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIndexVersion marks a snapshot whose format version does not match
	// the binary. A subclass of load failure kept separate for operators.
	ErrIndexVersion = errors.New("index format version mismatch")

	ErrEntryNotFound = errors.New("entry not found")
	ErrTimeout       = errors.New("operation timed out")
	ErrInternal      = errors.New("internal error")
)

// AppError wraps a sentinel with a human-readable message and the status
// code the API layer should answer with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error into an AppError.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the thin API layer
// should return.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIndexLoad), errors.Is(err, ErrIndexVersion):
		return http.StatusInternalServerError
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
