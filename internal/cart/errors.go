package cart

import (
	"errors"
	"fmt"
)

var ErrInvalidItem = errors.New("invalid cart item")

// ValidationError is returned when external product data cannot be turned
// into a line item.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidItem
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
