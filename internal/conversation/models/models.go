package models

import (
	"time"

	id "crm/pkg/domain"
)

// Conversation is the slice of a customer conversation the assignment core
// reads and writes: who owns it and how it got there.
type Conversation struct {
	ID               id.ConversationID `json:"id"`
	Status           string            `json:"status"`
	AssignedTeamID   id.TeamID         `json:"assignedTeamId,omitempty"`
	AssignedUserID   id.IdentityID     `json:"assignedUserId,omitempty"`
	AssignmentMethod string            `json:"assignmentMethod,omitempty"`
	TeamAssignedAt   *time.Time        `json:"teamAssignedAt,omitempty"`
	UserAssignedAt   *time.Time        `json:"userAssignedAt,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)
