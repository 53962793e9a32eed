package users

import "errors"

// Common errors used by repositories and use cases
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
	ErrDetached   = errors.New("user has no id assigned")
	ErrInvalidID  = errors.New("invalid user id")
)

// ErrValidation is a plain input validation error.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }
