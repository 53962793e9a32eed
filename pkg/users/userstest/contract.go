// Package userstest holds the behavior every users.Repository must show.
package userstest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copsboot/pkg/users"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T, repo users.Repository, email string, created time.Time) *users.User {
	t.Helper()
	u, err := users.NewUser(repo.NextID(), email)
	require.NoError(t, err)
	u.CreatedAt = created
	u.UpdatedAt = created
	return u
}

// RunRepositoryContract runs the shared repository checks against fresh
// repositories produced by newRepo.
func RunRepositoryContract(t *testing.T, newRepo func(t *testing.T) users.Repository) {
	ctx := context.Background()

	t.Run("NextIDIsFresh", func(t *testing.T) {
		repo := newRepo(t)
		a, b := repo.NextID(), repo.NextID()
		assert.False(t, a.IsZero())
		assert.False(t, a.Equal(b))
	})

	t.Run("SaveDetached", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Save(ctx, &users.User{Email: "detached@example.com"})
		assert.ErrorIs(t, err, users.ErrDetached)
	})

	t.Run("SaveAndFind", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "a@example.com", base)
		require.NoError(t, repo.Save(ctx, u))

		got, ok, err := repo.FindByID(ctx, u.MustID())
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(u))
		assert.Equal(t, "a@example.com", got.Email)
		assert.True(t, base.Equal(got.CreatedAt))
		assert.True(t, base.Equal(got.UpdatedAt))

		byEmail, ok, err := repo.FindByEmailIgnoreCase(ctx, "A@EXAMPLE.COM")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, byEmail.MustID().Equal(u.MustID()))

		exists, err := repo.ExistsByID(ctx, u.MustID())
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("StoresLowercaseEmail", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "Mixed@Example.COM", base)
		require.NoError(t, repo.Save(ctx, u))

		got, ok, err := repo.FindByID(ctx, u.MustID())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "mixed@example.com", got.Email)

		u.Email = "Other@Example.COM"
		require.NoError(t, repo.Update(ctx, u))
		got, ok, err = repo.FindByID(ctx, u.MustID())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "other@example.com", got.Email)
	})

	t.Run("MissIsNotAnError", func(t *testing.T) {
		repo := newRepo(t)
		got, ok, err := repo.FindByID(ctx, repo.NextID())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)

		got, ok, err = repo.FindByEmailIgnoreCase(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)

		exists, err := repo.ExistsByID(ctx, repo.NextID())
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newUser(t, repo, "dup@example.com", base)))
		err := repo.Save(ctx, newUser(t, repo, "DUP@example.com", base))
		assert.ErrorIs(t, err, users.ErrEmailTaken)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("SaveUpdatesExisting", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "old@example.com", base)
		require.NoError(t, repo.Save(ctx, u))

		u.Email = "new@example.com"
		u.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, repo.Save(ctx, u))

		_, ok, err := repo.FindByEmailIgnoreCase(ctx, "old@example.com")
		require.NoError(t, err)
		assert.False(t, ok)

		got, ok, err := repo.FindByEmailIgnoreCase(ctx, "new@example.com")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(u))
		assert.True(t, base.Equal(got.CreatedAt))
		assert.True(t, base.Add(time.Hour).Equal(got.UpdatedAt))

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "before@example.com", base)
		require.NoError(t, repo.Save(ctx, u))

		u.Email = "after@example.com"
		u.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, repo.Update(ctx, u))

		got, ok, err := repo.FindByEmailIgnoreCase(ctx, "after@example.com")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(u))
		assert.True(t, base.Equal(got.CreatedAt))
		assert.True(t, base.Add(time.Hour).Equal(got.UpdatedAt))

		_, ok, err = repo.FindByEmailIgnoreCase(ctx, "before@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UpdateNeverInserts", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "deleted@example.com", base)
		require.NoError(t, repo.Save(ctx, u))
		require.NoError(t, repo.DeleteByID(ctx, u.MustID()))

		err := repo.Update(ctx, u)
		assert.ErrorIs(t, err, users.ErrNotFound)

		exists, err := repo.ExistsByID(ctx, u.MustID())
		require.NoError(t, err)
		assert.False(t, exists)

		err = repo.Update(ctx, &users.User{Email: "detached@example.com"})
		assert.ErrorIs(t, err, users.ErrDetached)
	})

	t.Run("UpdateEmailTaken", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newUser(t, repo, "first@example.com", base)))
		u := newUser(t, repo, "second@example.com", base)
		require.NoError(t, repo.Save(ctx, u))

		u.Email = "FIRST@example.com"
		assert.ErrorIs(t, repo.Update(ctx, u), users.ErrEmailTaken)

		got, ok, err := repo.FindByID(ctx, u.MustID())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second@example.com", got.Email)
	})

	t.Run("FindAllPages", func(t *testing.T) {
		repo := newRepo(t)
		var saved []*users.User
		for i, email := range []string{"u0@example.com", "u1@example.com", "u2@example.com"} {
			u := newUser(t, repo, email, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, repo.Save(ctx, u))
			saved = append(saved, u)
		}

		all, err := repo.FindAll(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i := range saved {
			assert.True(t, all[i].Equal(saved[i]), "position %d", i)
		}

		page, err := repo.FindAll(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.True(t, page[0].Equal(saved[1]))

		empty, err := repo.FindAll(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, empty)

		// negative offsets start at the first user
		fromStart, err := repo.FindAll(ctx, 10, -1)
		require.NoError(t, err)
		require.Len(t, fromStart, 3)
		assert.True(t, fromStart[0].Equal(saved[0]))
	})

	t.Run("DeleteByID", func(t *testing.T) {
		repo := newRepo(t)
		u := newUser(t, repo, "gone@example.com", base)
		require.NoError(t, repo.Save(ctx, u))
		require.NoError(t, repo.DeleteByID(ctx, u.MustID()))
		require.NoError(t, repo.DeleteByID(ctx, u.MustID()))

		_, ok, err := repo.FindByID(ctx, u.MustID())
		require.NoError(t, err)
		assert.False(t, ok)

		// the email is free again
		require.NoError(t, repo.Save(ctx, newUser(t, repo, "gone@example.com", base)))
	})
}
