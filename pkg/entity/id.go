package entity

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// EntityID is a typed identifier of one entity kind.
type EntityID[T comparable] interface {
	ID() T
	AsString() string
}

// BaseID holds the raw value of an identifier. Concrete id types embed it
// in their own named struct so ids of different entity kinds never mix.
type BaseID[T comparable] struct {
	id T
}

// NewBaseID wraps raw. The zero value of T counts as absent and is rejected.
func NewBaseID[T comparable](raw T) (BaseID[T], error) {
	var zero T
	if raw == zero {
		return BaseID[T]{}, ErrNilID
	}
	return BaseID[T]{id: raw}, nil
}

// ID returns the wrapped raw value.
func (b BaseID[T]) ID() T { return b.id }

// AsString returns the canonical string form of the raw value.
func (b BaseID[T]) AsString() string {
	if s, ok := any(b.id).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(b.id)
}

// Equal reports whether both ids wrap the same raw value.
func (b BaseID[T]) Equal(other BaseID[T]) bool { return b.id == other.id }

// Hash is consistent with Equal.
func (b BaseID[T]) Hash() uint64 { return xxhash.Sum64String(b.AsString()) }

// IsZero reports whether b wraps nothing. NewBaseID never returns such a value.
func (b BaseID[T]) IsZero() bool {
	var zero T
	return b.id == zero
}

// Describe renders the debug form used by concrete id types, e.g. "UserID{id=...}".
func (b BaseID[T]) Describe(kind string) string {
	return fmt.Sprintf("%s{id=%v}", kind, b.id)
}
