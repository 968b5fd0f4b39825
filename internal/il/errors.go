package il

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPriceRatio = errors.New("invalid price ratio")
	ErrInvalidDuration   = errors.New("invalid duration")
)

// InputError identifies the input that failed validation.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Err, e.Field, e.Value)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputError(sentinel error, field string, value interface{}) error {
	return &InputError{Field: field, Value: fmt.Sprintf("%v", value), Err: sentinel}
}
