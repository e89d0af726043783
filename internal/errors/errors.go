package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. The first four form the domain taxonomy shared by the
// review engine and the rating tracker; the rest cover service edges.
const (
	ErrCodeInvalidGame        = "INVALID_GAME"
	ErrCodeEvalUnavailable    = "EVAL_UNAVAILABLE"
	ErrCodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	ErrCodeProviderFetch      = "PROVIDER_FETCH"

	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// AppError carries an error code, a human-readable message, the HTTP
// status to report at the API edge, and an optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/errors.As on the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidGameError reports unparseable or illegal movetext. Fatal
// to the review it belongs to.
func NewInvalidGameError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidGame,
		Message: "game notation is invalid",
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// NewEvalUnavailableError reports an evaluation backend that is
// unreachable, timed out, or returned a malformed response. Recovered
// per ply by the review orchestrator.
func NewEvalUnavailableError(backend string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeEvalUnavailable,
		Message: fmt.Sprintf("evaluation backend %q unavailable", backend),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NewDatasetUnavailableError reports a missing or unreadable opening
// reference dataset. The resolver degrades to its fallback layers.
func NewDatasetUnavailableError(path string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDatasetUnavailable,
		Message: fmt.Sprintf("opening dataset %q unavailable", path),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NewProviderFetchError reports a rating-provider API failure for one
// player. Update cycles treat the player as unchanged for the cycle.
func NewProviderFetchError(player string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeProviderFetch,
		Message: fmt.Sprintf("provider fetch failed for %q", player),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError reports invalid caller input.
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError reports a uniqueness or state conflict.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HasCode reports whether err is or wraps an AppError with the code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsInvalidGame reports whether err carries ErrCodeInvalidGame.
func IsInvalidGame(err error) bool { return HasCode(err, ErrCodeInvalidGame) }

// IsEvalUnavailable reports whether err carries ErrCodeEvalUnavailable.
func IsEvalUnavailable(err error) bool { return HasCode(err, ErrCodeEvalUnavailable) }

// IsDatasetUnavailable reports whether err carries ErrCodeDatasetUnavailable.
func IsDatasetUnavailable(err error) bool { return HasCode(err, ErrCodeDatasetUnavailable) }

// IsProviderFetch reports whether err carries ErrCodeProviderFetch.
func IsProviderFetch(err error) bool { return HasCode(err, ErrCodeProviderFetch) }

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }
