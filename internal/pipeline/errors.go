package pipeline

import (
	"errors"
	"fmt"
)

// PreconditionError reports a missing runtime prerequisite.
type PreconditionError struct {
	Requirement string
	Err         error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s is required but was not found on PATH: %v", e.Requirement, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsPrecondition checks whether err is or wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var precondition *PreconditionError
	return errors.As(err, &precondition)
}

// IsValidation checks whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}
