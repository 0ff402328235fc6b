package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the equipment core. Handlers map these to HTTP status
// codes via StatusCode; everything else is a 500.
var (
	ErrNotFound                 = errors.New("record not found")
	ErrDuplicateCode            = errors.New("equipment code already exists")
	ErrImmutableField           = errors.New("equipment code cannot be changed")
	ErrInsufficientAvailability = errors.New("not enough available units")
	ErrInvalidTarget            = errors.New("equipment cannot be assigned in its current status")
	ErrAlreadyReturned          = errors.New("assignment has already been returned")
	ErrNothingToComplete        = errors.New("equipment is not under maintenance")
	ErrActiveAssignments        = errors.New("equipment has active assignments")
	ErrAuthenticationFailed     = errors.New("authentication failed")

	// ErrInvariantViolation marks a ledger sum mismatch. It is a data
	// integrity bug, not a user error, and must never be swallowed.
	ErrInvariantViolation = errors.New("quantity ledger invariant violated")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StatusCode returns the HTTP status for an error from the core.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrActiveAssignments),
		errors.Is(err, ErrAlreadyReturned),
		errors.Is(err, ErrNothingToComplete),
		errors.Is(err, ErrInsufficientAvailability),
		errors.Is(err, ErrInvalidTarget):
		return http.StatusConflict
	case errors.Is(err, ErrImmutableField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
