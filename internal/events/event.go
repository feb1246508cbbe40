package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types published over the lifecycle of a match record.
const (
	TypeMatchCreated = "match.created"
	TypeMatchDeleted = "match.deleted"
)

// Event is the JSON payload sent to downstream consumers.
type Event struct {
	Type       string    `json:"type"`
	MatchID    string    `json:"matchId"`
	OwnerID    string    `json:"ownerId"`
	MatchScore int       `json:"matchScore"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Encode returns the JSON representation of an event.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

var _ Publisher = Nop{}
