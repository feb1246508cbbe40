package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo backs the directory in dev runs without DATABASE_URL.
type MemoryRepo struct {
	mu     sync.RWMutex
	users  map[string]User
	writes int
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User), now: time.Now}
}

// Upsert merges user into the stored entry with the same COALESCE rules as
// the Postgres repo.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = mergeUser(r.users[user.ID], user, r.now().UTC())
	r.writes++
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// mergeUser keeps known email and name when incoming omits them.
func mergeUser(existing, incoming User, now time.Time) User {
	out := incoming
	if existing.ID == "" {
		out.CreatedAt = now
	} else {
		out.CreatedAt = existing.CreatedAt
		if out.Email == "" {
			out.Email = existing.Email
		}
		if out.Name == "" {
			out.Name = existing.Name
		}
	}
	out.UpdatedAt = now
	return out
}
