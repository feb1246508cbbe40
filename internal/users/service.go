package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultResyncAfter bounds how long an unchanged identity skips the upsert.
const DefaultResyncAfter = 10 * time.Minute

// Service keeps the owner directory in step with verified tokens. The auth
// middleware calls SyncIdentity on every request, so unchanged identities
// are remembered and not rewritten until ResyncAfter passes.
type Service struct {
	Repo        Repo
	ResyncAfter time.Duration

	mu    sync.Mutex
	seen  map[string]syncedIdentity
	swept time.Time
	now   func() time.Time
}

type syncedIdentity struct {
	email string
	name  string
	at    time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, ResyncAfter: DefaultResyncAfter}
}

// SyncIdentity records the identity carried by a verified token.
func (s *Service) SyncIdentity(ctx context.Context, id, email, name string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("user id is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	now := s.clock()
	if s.fresh(id, email, name, now) {
		return nil
	}
	if err := s.Repo.Upsert(ctx, User{ID: id, Email: email, Name: name}); err != nil {
		return err
	}
	s.remember(id, email, name, now)
	return nil
}

// Lookup returns the directory entry for id. Unknown users yield a zero User
// with only the ID set.
func (s *Service) Lookup(ctx context.Context, id string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{ID: id}, nil
	}
	user, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{ID: id}, nil
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) fresh(id, email, name string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.seen[id]
	if !ok || prev.email != email || prev.name != name {
		return false
	}
	return now.Sub(prev.at) < s.ResyncAfter
}

func (s *Service) remember(id, email, name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]syncedIdentity)
	}
	// Expired entries would be rewritten anyway; sweep them at most once per
	// ResyncAfter so the cache stays bounded by recently active users.
	if now.Sub(s.swept) >= s.ResyncAfter {
		for key, entry := range s.seen {
			if now.Sub(entry.at) >= s.ResyncAfter {
				delete(s.seen, key)
			}
		}
		s.swept = now
	}
	s.seen[id] = syncedIdentity{email: email, name: name, at: now}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
