package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Repo stores owner directory entries keyed by the token subject.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
