// Package memory keeps users in process memory; useful for unit tests
// and single-instance deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/artem13815/copsboot/pkg/users"
)

// UserRepository implements users.Repository over a map keyed by id.
// Stored users are copies, so callers cannot mutate them behind the lock.
type UserRepository struct {
	users.IDSource

	mu    sync.RWMutex
	byID  map[users.UserID]users.User
	email map[string]users.UserID
}

var _ users.Repository = (*UserRepository)(nil)

func NewUserRepository(ids users.IDSource) *UserRepository {
	return &UserRepository{
		IDSource: ids,
		byID:     make(map[users.UserID]users.User),
		email:    make(map[string]users.UserID),
	}
}

func (r *UserRepository) Save(_ context.Context, u *users.User) error {
	id, ok := u.ID()
	if !ok {
		return users.ErrDetached
	}
	key := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.email[key]; taken && owner != id {
		return users.ErrEmailTaken
	}
	if prev, exists := r.byID[id]; exists {
		delete(r.email, strings.ToLower(prev.Email))
	}
	stored := *u
	stored.Email = key
	r.byID[id] = stored
	r.email[key] = id
	return nil
}

// Update rewrites an existing user and never inserts.
func (r *UserRepository) Update(_ context.Context, u *users.User) error {
	id, ok := u.ID()
	if !ok {
		return users.ErrDetached
	}
	key := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	prev, exists := r.byID[id]
	if !exists {
		return users.ErrNotFound
	}
	if owner, taken := r.email[key]; taken && owner != id {
		return users.ErrEmailTaken
	}
	delete(r.email, strings.ToLower(prev.Email))
	stored := *u
	stored.Email = key
	r.byID[id] = stored
	r.email[key] = id
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id users.UserID) (*users.User, bool, error) {
	r.mu.RLock()
	u, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (r *UserRepository) FindByEmailIgnoreCase(ctx context.Context, email string) (*users.User, bool, error) {
	r.mu.RLock()
	id, ok := r.email[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) ExistsByID(_ context.Context, id users.UserID) (bool, error) {
	r.mu.RLock()
	_, ok := r.byID[id]
	r.mu.RUnlock()
	return ok, nil
}

// FindAll orders by creation time, then by id.
func (r *UserRepository) FindAll(_ context.Context, limit, offset int) ([]*users.User, error) {
	r.mu.RLock()
	all := make([]*users.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, &u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].MustID().AsString() < all[j].MustID().AsString()
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*users.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id users.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.email, strings.ToLower(u.Email))
		delete(r.byID, id)
	}
	return nil
}
