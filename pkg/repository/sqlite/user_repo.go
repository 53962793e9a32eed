// Package sqlite stores users in SQLite, keyed by the canonical id string.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/artem13815/copsboot/pkg/users"
)

// UserRepository implements users.Repository on a database/sql handle.
type UserRepository struct {
	users.IDSource
	db *sql.DB
}

var _ users.Repository = (*UserRepository)(nil)

// NewUserRepository expects the schema from storage/sqlite.Migrate.
func NewUserRepository(db *sql.DB, ids users.IDSource) *UserRepository {
	return &UserRepository{IDSource: ids, db: db}
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func (r *UserRepository) Save(ctx context.Context, u *users.User) error {
	id, ok := u.ID()
	if !ok {
		return users.ErrDetached
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET email = excluded.email, updated_at = excluded.updated_at
`, id.AsString(), strings.ToLower(u.Email), toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
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
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET email = ?, updated_at = ? WHERE id = ?
`, strings.ToLower(u.Email), toMillis(u.UpdatedAt), id.AsString())
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id users.UserID) (*users.User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, created_at, updated_at FROM users WHERE id = ?
`, id.AsString())
	return scanOne(row)
}

func (r *UserRepository) FindByEmailIgnoreCase(ctx context.Context, email string) (*users.User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, created_at, updated_at FROM users WHERE email = ? COLLATE NOCASE
`, strings.ToLower(email))
	return scanOne(row)
}

func (r *UserRepository) ExistsByID(ctx context.Context, id users.UserID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id.AsString()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) FindAll(ctx context.Context, limit, offset int) ([]*users.User, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, email, created_at, updated_at FROM users
ORDER BY created_at, id
LIMIT ? OFFSET ?
`, limit, offset)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) DeleteByID(ctx context.Context, id users.UserID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.AsString())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (*users.User, bool, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

func scanUser(row scanner) (*users.User, error) {
	var (
		raw                  string
		u                    users.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&raw, &u.Email, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	id, err := users.ParseUserID(raw)
	if err != nil {
		return nil, err
	}
	if err := u.Attach(id); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
