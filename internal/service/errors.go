package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting user does not own the entity
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned on a failed login or password check
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is a field-keyed input error. Handlers serialize it as
// {"<field>": "<message>"} with status 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError is a state-machine precondition violation (already added,
// not present, self-subscribe). Handlers serialize it as {"detail": msg}
// with status 400.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}
