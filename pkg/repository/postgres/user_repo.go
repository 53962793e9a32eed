package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/copsboot/pkg/users"
)

const uniqueViolation = "23505"

// UserRepository implements users.Repository backed by PostgreSQL (pgx).
type UserRepository struct {
	users.IDSource
	pool *pgxpool.Pool
}

var _ users.Repository = (*UserRepository)(nil)

// NewUserRepository expects the schema from storage/postgres.Migrate.
func NewUserRepository(pool *pgxpool.Pool, ids users.IDSource) *UserRepository {
	return &UserRepository{IDSource: ids, pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, u *users.User) error {
	id, ok := u.ID()
	if !ok {
		return users.ErrDetached
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
	`, id.ID(), strings.ToLower(u.Email), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *users.User) error {
	id, ok := u.ID()
	if !ok {
		return users.ErrDetached
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $2, updated_at = $3
		WHERE id = $1
	`, id.ID(), strings.ToLower(u.Email), u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id users.UserID) (*users.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, created_at, updated_at
		FROM users WHERE id = $1
	`, id.ID())
	return scanOne(row)
}

func (r *UserRepository) FindByEmailIgnoreCase(ctx context.Context, email string) (*users.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, created_at, updated_at
		FROM users WHERE lower(email) = $1
	`, strings.ToLower(email))
	return scanOne(row)
}

func (r *UserRepository) ExistsByID(ctx context.Context, id users.UserID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id.ID()).Scan(&exists)
	return exists, err
}

// FindAll returns every user when limit is not positive.
// A negative offset counts as zero.
func (r *UserRepository) FindAll(ctx context.Context, limit, offset int) ([]*users.User, error) {
	if offset < 0 {
		offset = 0
	}
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, created_at, updated_at
		FROM users ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, lim, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*users.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) DeleteByID(ctx context.Context, id users.UserID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.ID())
	return err
}

func scanOne(row pgx.Row) (*users.User, bool, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

// scanUser rehydrates a detached user and attaches the stored id.
func scanUser(row pgx.Row) (*users.User, error) {
	var (
		raw                  uuid.UUID
		u                    users.User
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&raw, &u.Email, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	id, err := users.NewUserID(raw)
	if err != nil {
		return nil, err
	}
	if err := u.Attach(id); err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updatedAt.UTC()
	return &u, nil
}
