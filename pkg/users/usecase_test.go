package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copsboot/pkg/entity"
	"github.com/artem13815/copsboot/pkg/repository/memory"
	"github.com/artem13815/copsboot/pkg/users"
)

type fixedGenerator struct{ id uuid.UUID }

func (g fixedGenerator) NextUniqueID() uuid.UUID { return g.id }

func newService(gen entity.UniqueIDGenerator[uuid.UUID]) (users.UseCase, *memory.UserRepository) {
	repo := memory.NewUserRepository(users.NewIDSource(gen))
	return users.NewService(repo, zerolog.Nop()), repo
}

func TestService_CreateThenFindByEmail(t *testing.T) {
	ctx := context.Background()
	u := uuid.New()
	svc, repo := newService(fixedGenerator{id: u})

	created, err := svc.Create(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, users.MustUserID(u), created.MustID())
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	stored, ok, err := repo.FindByID(ctx, users.MustUserID(u))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.String(), stored.MustID().AsString())

	found, ok, err := svc.FindByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, found.Equal(created))
	assert.True(t, found.MustID().Equal(users.MustUserID(u)))
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	_, err := svc.Create(context.Background(), "   ")
	var verr users.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestService_CreateNormalizesEmail(t *testing.T) {
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	u, err := svc.Create(context.Background(), "  Mixed@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "mixed@example.com", u.Email)
}

func TestService_DuplicateEmailLeftToStorage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	_, err := svc.Create(ctx, "dup@example.com")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "DUP@example.com")
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestService_GetAndChangeEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})

	_, err := svc.Get(ctx, users.MustUserID(uuid.New()))
	assert.ErrorIs(t, err, users.ErrNotFound)
	_, err = svc.ChangeEmail(ctx, users.MustUserID(uuid.New()), "x@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)

	u, err := svc.Create(ctx, "before@example.com")
	require.NoError(t, err)

	changed, err := svc.ChangeEmail(ctx, u.MustID(), "After@example.com")
	require.NoError(t, err)
	assert.True(t, changed.Equal(u))
	assert.Equal(t, "after@example.com", changed.Email)

	got, err := svc.Get(ctx, u.MustID())
	require.NoError(t, err)
	assert.Equal(t, "after@example.com", got.Email)

	_, ok, err := svc.FindByEmail(ctx, "before@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

// racingDelete removes the user right after it was read, as a concurrent
// request would.
type racingDelete struct {
	*memory.UserRepository
}

func (r racingDelete) FindByID(ctx context.Context, id users.UserID) (*users.User, bool, error) {
	u, ok, err := r.UserRepository.FindByID(ctx, id)
	if err == nil && ok {
		err = r.UserRepository.DeleteByID(ctx, id)
	}
	return u, ok, err
}

func TestService_ChangeEmailDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository(users.NewIDSource(entity.InMemoryUniqueIDGenerator{}))
	svc := users.NewService(racingDelete{repo}, zerolog.Nop())

	u, err := svc.Create(ctx, "racer@example.com")
	require.NoError(t, err)

	_, err = svc.ChangeEmail(ctx, u.MustID(), "moved@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)

	exists, err := repo.ExistsByID(ctx, u.MustID())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_ListNegativeOffset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	_, err := svc.Create(ctx, "only@example.com")
	require.NoError(t, err)

	page, err := svc.List(ctx, 10, -3)
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, int64(1), page.Total)
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Create(ctx, e)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(3), page.Total)

	require.NoError(t, svc.Delete(ctx, page.Users[0].MustID()))
	page, err = svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestService_FindByEmailBlank(t *testing.T) {
	svc, _ := newService(entity.InMemoryUniqueIDGenerator{})
	u, ok, err := svc.FindByEmail(context.Background(), " ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, u)
}
