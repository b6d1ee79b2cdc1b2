package cli

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrRejected is returned when a view-model refused an operation. The
// reason is in the notifications.
var ErrRejected = errors.New("operation failed")

// ParseID parses a positive record identifier.
func ParseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// OptionalID maps an unset id flag (zero) to nil.
func OptionalID(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}

// Rejected wraps ErrRejected with the operation.
func Rejected(op string) error {
	return fmt.Errorf("%s: %w", op, ErrRejected)
}
