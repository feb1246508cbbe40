package matches

import "context"

// Repo persists match records. Ownership checks live in Service.
type Repo interface {
	Create(ctx context.Context, rec MatchRecord) error
	GetByID(ctx context.Context, id string) (MatchRecord, error)
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]MatchRecord, error)
	Delete(ctx context.Context, id string) error
}
