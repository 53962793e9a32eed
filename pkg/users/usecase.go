package users

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// UseCase describes user management behavior.
type UseCase interface {
	Create(ctx context.Context, email string) (*User, error)
	Get(ctx context.Context, id UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, bool, error)
	List(ctx context.Context, limit, offset int) (Page, error)
	ChangeEmail(ctx context.Context, id UserID, email string) (*User, error)
	Delete(ctx context.Context, id UserID) error
}

// Page is one slice of the user listing.
type Page struct {
	Users []*User
	Total int64
}

type service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewService returns default implementation of UseCase.
func NewService(repo Repository, log zerolog.Logger) UseCase {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "users").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrValidation("email is required")
	}
	return email, nil
}

// Create mints an id through the repository and stores a new user.
// Email uniqueness is left to the storage constraint.
func (s *service) Create(ctx context.Context, email string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := NewUser(s.repo.NextID(), email)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.log.Debug().Str("user_id", u.MustID().AsString()).Msg("user created")
	return u, nil
}

func (s *service) Get(ctx context.Context, id UserID) (*User, error) {
	u, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, nil
	}
	return s.repo.FindByEmailIgnoreCase(ctx, email)
}

func (s *service) List(ctx context.Context, limit, offset int) (Page, error) {
	list, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return Page{}, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{Users: list, Total: total}, nil
}

func (s *service) ChangeEmail(ctx context.Context, id UserID, email string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Email = email
	u.UpdatedAt = s.now()
	// Update never re-inserts, so a concurrent delete wins.
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id UserID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Debug().Str("user_id", id.AsString()).Msg("user deleted")
	return nil
}
