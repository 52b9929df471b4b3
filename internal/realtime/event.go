// Package realtime pushes assignment events to connected agents and to
// other services.
package realtime

import (
	"context"
	"time"

	id "crm/pkg/domain"
)

type EventType string

const (
	EventAssignedToTeam EventType = "conversation_assigned_to_team"
	EventAssignedToUser EventType = "conversation_assigned_to_user"
)

type Event struct {
	Type           EventType         `json:"type"`
	ConversationID id.ConversationID `json:"conversationId"`
	TeamID         id.TeamID         `json:"teamId,omitempty"`
	UserID         id.IdentityID     `json:"userId,omitempty"`
	Method         string            `json:"method,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Broadcaster delivers events on a best-effort basis. Implementations log
// delivery failures instead of returning them.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event)
}

// Multi fans an event out to every broadcaster in order.
type Multi []Broadcaster

func (m Multi) Broadcast(ctx context.Context, event Event) {
	for _, b := range m {
		if b != nil {
			b.Broadcast(ctx, event)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Broadcast(context.Context, Event) {}
