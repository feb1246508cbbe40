package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo stores the directory in the users table.
type PGRepo struct {
	DB *sql.DB
}

const (
	upsertUserSQL = `
INSERT INTO users (id, email, name, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = COALESCE(EXCLUDED.email, users.email),
  name = COALESCE(EXCLUDED.name, users.name),
  updated_at = now()
WHERE users.email IS DISTINCT FROM COALESCE(EXCLUDED.email, users.email)
   OR users.name IS DISTINCT FROM COALESCE(EXCLUDED.name, users.name)`

	selectUserSQL = `
SELECT id, COALESCE(email, ''), COALESCE(name, ''), created_at, updated_at
FROM users
WHERE id = $1`
)

// Upsert keeps previously known email and name when the new token omits
// them. Rows whose values would not change are left untouched.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	_, err := r.DB.ExecContext(ctx, upsertUserSQL, user.ID, nullIfEmpty(user.Email), nullIfEmpty(user.Name))
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx, selectUserSQL, userID).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return User{}, ErrNotFound
	case err != nil:
		return User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

// nullIfEmpty maps "" to NULL so COALESCE keeps the stored value.
func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
