package entity

import "errors"

var (
	// ErrNilID is returned when an identifier is built from an absent (zero) raw value.
	ErrNilID = errors.New("entity: identifier must wrap a non-zero value")
	// ErrIDReassigned is returned when an attached entity is given a second identifier.
	ErrIDReassigned = errors.New("entity: identifier already assigned")
	// ErrUnknownGenerator is returned for an unsupported generator kind.
	ErrUnknownGenerator = errors.New("entity: unknown id generator")
)
