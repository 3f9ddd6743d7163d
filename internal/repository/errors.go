package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

// DuplicateError is returned when an insert or update violates a unique
// constraint. Field is empty when the driver does not name the column.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate record: %v", e.Err)
	}
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}
