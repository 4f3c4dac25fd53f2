package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a change made to a profile outside of the owner's own edits.
type EventType string

const (
	EventProfileSynthesized EventType = "profile_synthesized"
	EventRoleInferred       EventType = "role_inferred"
	EventSitesSynced        EventType = "sites_synced"
	EventEmailBackfilled    EventType = "email_backfilled"
	EventRoleAssigned       EventType = "role_assigned"
)

// Event is one audit trail entry.
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	UID        string                 `json:"uid"`
	Actor      string                 `json:"actor,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType, uid string, details map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UID:        uid,
		Details:    details,
		OccurredAt: time.Now().UTC(),
	}
}

// WithActor records who triggered the change when it was not the resolver itself.
func (e Event) WithActor(actor string) Event {
	e.Actor = actor
	return e
}

// Recorder persists audit events. Callers treat failures as non-fatal.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
