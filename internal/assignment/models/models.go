package models

import (
	"fmt"
	"time"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	platformstrings "crm/pkg/platform/strings"
)

// Method records how a conversation reached its owner.
type Method string

const (
	MethodManual     Method = "manual"
	MethodKeyword    Method = "keyword"
	MethodRoundRobin Method = "round_robin"
	MethodRandom     Method = "random"
)

// ParseMethod accepts the methods a caller may ask for. Empty means manual.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(platformstrings.Fold(raw)); m {
	case "":
		return MethodManual, nil
	case MethodManual, MethodKeyword, MethodRoundRobin, MethodRandom:
		return m, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown assignment method %q", raw))
	}
}

func (m Method) String() string { return string(m) }

// Source tags which orchestrator entry point produced an operation.
type Source string

const (
	SourceTeamAssignment Source = "team_assignment"
	SourceUserAssignment Source = "user_assignment"
)

// Operation is one assignment attempt as the duplicate guard sees it.
// TeamID and UserID are optional: a zero value means "not part of this
// operation".
type Operation struct {
	ConversationID id.ConversationID
	TeamID         id.TeamID
	UserID         id.IdentityID
	Timestamp      time.Time
	Source         Source
}

// Target identifies what the operation assigns to. Two operations are
// repeats of each other when their targets are equal.
func (o Operation) Target() string {
	return fmt.Sprintf("team=%d;user=%d", o.TeamID, o.UserID)
}

// Result is returned by both orchestrator entry points. Success is false
// when the call was suppressed as a repeat.
type Result struct {
	Success bool          `json:"success"`
	TeamID  id.TeamID     `json:"teamId,omitempty"`
	UserID  id.IdentityID `json:"userId,omitempty"`
	Method  Method        `json:"method,omitempty"`
}

// Selection is the outcome of picking a team member.
type Selection struct {
	Success bool
	UserID  id.IdentityID
}

// RouteResult is the outcome of keyword routing followed by team assignment.
type RouteResult struct {
	Matched  bool      `json:"matched"`
	TeamID   id.TeamID `json:"teamId,omitempty"`
	TeamName string    `json:"teamName,omitempty"`
	Result   *Result   `json:"result,omitempty"`
}
