package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests that cannot be optimized or stored as given.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned by registries when an active record does not exist.
	ErrNotFound = errors.New("not found")
)

// InvalidInputError is an ErrInvalidInput whose Msg can be shown to API clients as is.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg + ": " + ErrInvalidInput.Error() }

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// Invalidf builds an InvalidInputError from a format string.
func Invalidf(format string, args ...any) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}
