package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for nil entities, nil predicates and
	// unknown fields. It is raised before the store is touched.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConcurrencyConflict is returned when a guarded update or delete
	// matched no row because the row changed or disappeared.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrConstraintViolation is returned when the store rejects a write
	// because of a unique, foreign key, not null or check constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrStoreUnavailable is returned while the store circuit is open.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// DataAccessError is the single error kind surfaced by repositories.
// Message is a human readable summary; Err keeps the cause chain so
// callers can branch with errors.Is on the sentinels above.
type DataAccessError struct {
	Op      string
	Entity  string
	ID      int
	Message string
	Err     error
}

func (e *DataAccessError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// NewDataAccessError builds a DataAccessError for an operation on an entity type.
func NewDataAccessError(op, entity, message string, err error) *DataAccessError {
	return &DataAccessError{Op: op, Entity: entity, Message: message, Err: err}
}

// InvalidArgument builds a DataAccessError wrapping ErrInvalidArgument.
func InvalidArgument(op, entity, reason string) *DataAccessError {
	return &DataAccessError{
		Op:      op,
		Entity:  entity,
		Message: fmt.Sprintf("%s %s: %s", op, entity, reason),
		Err:     ErrInvalidArgument,
	}
}

// IsDataAccess reports whether err carries a DataAccessError.
func IsDataAccess(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae)
}
