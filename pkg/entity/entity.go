package entity

import "fmt"

// Identifier is the constraint satisfied by concrete entity id types.
type Identifier interface {
	comparable
	AsString() string
	Hash() uint64
	IsZero() bool
}

// Entity is a persisted object exposing its identifier.
// The boolean is false while the entity is detached.
type Entity[I Identifier] interface {
	ID() (I, bool)
}

// Identity is the identifier state of an entity: either unassigned
// (detached, e.g. while a store rehydrates a row) or assigned once.
type Identity[I Identifier] struct {
	id       I
	assigned bool
}

// Unassigned returns a detached identity.
func Unassigned[I Identifier]() Identity[I] { return Identity[I]{} }

// Assigned returns an attached identity holding id.
func Assigned[I Identifier](id I) (Identity[I], error) {
	if id.IsZero() {
		return Identity[I]{}, ErrNilID
	}
	return Identity[I]{id: id, assigned: true}, nil
}

// ID returns the identifier and whether one is assigned.
func (e Identity[I]) ID() (I, bool) { return e.id, e.assigned }

func (e Identity[I]) IsAssigned() bool { return e.assigned }

// Assign attaches id to a detached identity.
func (e Identity[I]) Assign(id I) (Identity[I], error) {
	if e.assigned {
		return e, ErrIDReassigned
	}
	return Assigned(id)
}

// Same reports whether both identities are attached to equal ids.
// Detached identities are never the same by value.
func (e Identity[I]) Same(other Identity[I]) bool {
	return e.assigned && other.assigned && e.id == other.id
}

// Hash is consistent with Same; detached identities hash to 0.
func (e Identity[I]) Hash() uint64 {
	if !e.assigned {
		return 0
	}
	return e.id.Hash()
}

func (e Identity[I]) String() string {
	if !e.assigned {
		return "<unassigned>"
	}
	return fmt.Sprint(e.id)
}
