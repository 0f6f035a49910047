package esocial

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEmployer = errors.New("employer identity is missing or malformed")
	ErrEmptyPeriod     = errors.New("reporting period is empty")
	ErrInvalidPeriod   = errors.New("reporting period is invalid")
	ErrEmptyDigits     = errors.New("mandatory field has no digits")
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
)

// PreconditionError aborts a whole batch before any event is produced.
type PreconditionError struct {
	Field  string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("batch precondition failed: %s: %s", e.Field, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

type FormatError struct {
	Field string
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q contains no digits", e.Field, e.Input)
}

func (e *FormatError) Unwrap() error {
	return ErrEmptyDigits
}

func IsPrecondition(err error) bool {
	var pre *PreconditionError
	return errors.As(err, &pre)
}
