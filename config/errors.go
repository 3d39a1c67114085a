package config

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every configuration error with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error describes a rejected configuration option.
type Error struct {
	// Option is the name of the option, as used by Set and in config files.
	Option string

	// Value is the rejected value in text form, if there was one.
	Value string

	Message string

	// Err wraps the underlying error, such as a number parse failure.
	Err error
}

func (e *Error) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("config: %s: %q: %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("config: %s: %s", e.Option, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func optionError(option, value, msg string, err error) *Error {
	return &Error{
		Option:  option,
		Value:   value,
		Message: msg,
		Err:     err,
	}
}
