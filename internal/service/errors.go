package service

import (
	"errors"
	"fmt"
)

// Error kinds. The API layer maps them to status codes with errors.Is;
// authorization failures are deliberately reported as ErrNotFound so that
// unauthorized callers cannot probe for existence.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation")
)

// Error carries a kind plus a human-readable message. Error() returns the
// message only; the kind is reachable through errors.Is.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func notFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}
