package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNameConflict and ErrInvalidInput indicate caller mistakes and
	// propagate as errors from the service layer. Absent or foreign-owned
	// rows are reported as (nil, false) results instead, never as errors.
	ErrNameConflict = errors.New("name already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyContent = errors.New("empty content")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
