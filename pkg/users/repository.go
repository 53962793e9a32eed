package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/artem13815/copsboot/pkg/entity"
)

// RepositoryCustom mints ids for users that were never persisted.
type RepositoryCustom interface {
	NextID() UserID
}

// Repository abstracts user persistence from the domain layer.
// Lookup misses are reported as (nil, false, nil).
type Repository interface {
	RepositoryCustom

	// Save inserts u or updates the row with the same id.
	Save(ctx context.Context, u *User) error
	// Update rewrites the email and update time of a stored user.
	// It returns ErrNotFound instead of inserting a missing row.
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id UserID) (*User, bool, error)
	// FindByEmailIgnoreCase compares emails case-insensitively.
	FindByEmailIgnoreCase(ctx context.Context, email string) (*User, bool, error)
	ExistsByID(ctx context.Context, id UserID) (bool, error)
	// FindAll returns every user when limit is not positive; a negative
	// offset counts as zero.
	FindAll(ctx context.Context, limit, offset int) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	// DeleteByID is a no-op for unknown ids.
	DeleteByID(ctx context.Context, id UserID) error
}

// IDSource implements RepositoryCustom on top of a generator.
// Storage adapters embed it.
type IDSource struct {
	generator entity.UniqueIDGenerator[uuid.UUID]
}

func NewIDSource(generator entity.UniqueIDGenerator[uuid.UUID]) IDSource {
	return IDSource{generator: generator}
}

// NextID wraps a fresh generator value. Generators never return uuid.Nil,
// so a failure here is a broken generator.
func (s IDSource) NextID() UserID {
	return MustUserID(s.generator.NextUniqueID())
}
