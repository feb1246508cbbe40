package matches

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores match records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]MatchRecord
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]MatchRecord),
		byOwner: make(map[string][]string),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	r.byOwner[rec.OwnerID] = append(r.byOwner[rec.OwnerID], rec.ID)
	return nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return MatchRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return MatchRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns the owner's records ordered by CreatedAt descending.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := r.byOwner[ownerID]
	out := make([]MatchRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a record.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	ids := r.byOwner[rec.OwnerID]
	for i, existing := range ids {
		if existing == id {
			r.byOwner[rec.OwnerID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
