package apperror

import "errors"

// Error taxonomy shared by repositories, services and handlers.
// Callers match with errors.Is; wrap with fmt.Errorf("...: %w", err) to add context.
var (
	// ErrUnauthorized is returned when no authenticated owner identity is present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a record does not exist or belongs to another owner.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable wraps any other failure reported by the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation returns an ErrValidation carrying a human readable reason.
func Validation(reason string) error {
	return &validationError{reason: reason}
}

type validationError struct {
	reason string
}

func (e *validationError) Error() string { return e.reason }

func (e *validationError) Unwrap() error { return ErrValidation }
