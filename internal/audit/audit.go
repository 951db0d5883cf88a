// Package audit captures directory change events. Commands emit an event after
// their transaction commits; delivery is fail-open so a broker outage never
// blocks a write path.
package audit

import (
	"context"
	"time"
)

// Actions emitted by the directory.
const (
	ActionPersonCreated   = "person_created"
	ActionPersonUpdated   = "person_updated"
	ActionPersonDeleted   = "person_deleted"
	ActionRelationCreated = "relation_created"
	ActionRelationDeleted = "relation_deleted"
	ActionImageUploaded   = "image_uploaded"
)

// Event is one directory change. Keep it transport-agnostic so sinks can fan
// out.
type Event struct {
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id"`
	Action          string    `json:"action"`
	PersonID        int64     `json:"person_id"`
	RelatedPersonID int64     `json:"related_person_id,omitempty"`
	Detail          string    `json:"detail,omitempty"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Nop drops every event; the default when no broker is configured.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (*Nop) Emit(context.Context, Event) {}
