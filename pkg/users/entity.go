package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/copsboot/pkg/entity"
)

// UserID identifies a User.
type UserID struct {
	entity.BaseID[uuid.UUID]
}

var _ entity.EntityID[uuid.UUID] = UserID{}

// NewUserID wraps raw; uuid.Nil is rejected.
func NewUserID(raw uuid.UUID) (UserID, error) {
	b, err := entity.NewBaseID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID{b}, nil
}

// MustUserID is NewUserID for constants and tests.
func MustUserID(raw uuid.UUID) UserID {
	id, err := NewUserID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseUserID restores an id from its canonical string form.
// It is used to look up existing users, never to create new ones.
func ParseUserID(s string) (UserID, error) {
	raw, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return UserID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	id, err := NewUserID(raw)
	if err != nil {
		return UserID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

func (id UserID) Equal(other UserID) bool { return id.BaseID.Equal(other.BaseID) }

func (id UserID) String() string { return id.Describe("UserID") }

// User is a domain entity representing a system user.
// Two users are the same user iff their ids are equal.
type User struct {
	identity  entity.Identity[UserID]
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var _ entity.Entity[UserID] = (*User)(nil)

// NewUser builds an attached user.
func NewUser(id UserID, email string) (*User, error) {
	identity, err := entity.Assigned(id)
	if err != nil {
		return nil, err
	}
	return &User{identity: identity, Email: email}, nil
}

// ID returns the user's id; false while the user is detached.
func (u *User) ID() (UserID, bool) { return u.identity.ID() }

// MustID returns the id of an attached user and panics on a detached one.
func (u *User) MustID() UserID {
	id, ok := u.identity.ID()
	if !ok {
		panic(ErrDetached)
	}
	return id
}

// Attach assigns id to a detached user, e.g. one being rehydrated from storage.
func (u *User) Attach(id UserID) error {
	identity, err := u.identity.Assign(id)
	if err != nil {
		return err
	}
	u.identity = identity
	return nil
}

// Equal compares users by id. Detached users are equal only to themselves.
func (u *User) Equal(other *User) bool {
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}
	return u.identity.Same(other.identity)
}

func (u *User) Hash() uint64 { return u.identity.Hash() }

func (u *User) String() string {
	return fmt.Sprintf("User{id=%s}", u.identity)
}
