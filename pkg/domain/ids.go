// Package domain holds typed identifiers shared across bounded contexts.
//
// Identifiers are positive integers assigned by the relational store. Each
// entity gets its own named type so a TeamID can never be passed where an
// IdentityID is expected.
package domain

import (
	"strconv"
	"strings"

	dErrors "crm/pkg/domain-errors"
)

type (
	IdentityID     int64
	RoleID         int64
	PermissionID   int64
	TeamID         int64
	ConversationID int64
	KeywordRuleID  int64
)

func (id IdentityID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id RoleID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id PermissionID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id TeamID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id ConversationID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id KeywordRuleID) String() string  { return strconv.FormatInt(int64(id), 10) }

func (id IdentityID) IsNil() bool     { return id <= 0 }
func (id RoleID) IsNil() bool         { return id <= 0 }
func (id PermissionID) IsNil() bool   { return id <= 0 }
func (id TeamID) IsNil() bool         { return id <= 0 }
func (id ConversationID) IsNil() bool { return id <= 0 }
func (id KeywordRuleID) IsNil() bool  { return id <= 0 }

// parseID is the single trust-boundary parser for every identifier type.
// It rejects empty input, non-decimal input, and non-positive values.
func parseID(kind, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" format")
	}
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" must be positive")
	}
	return v, nil
}

func ParseIdentityID(s string) (IdentityID, error) {
	v, err := parseID("user id", s)
	return IdentityID(v), err
}

func ParseRoleID(s string) (RoleID, error) {
	v, err := parseID("role id", s)
	return RoleID(v), err
}

func ParsePermissionID(s string) (PermissionID, error) {
	v, err := parseID("permission id", s)
	return PermissionID(v), err
}

func ParseTeamID(s string) (TeamID, error) {
	v, err := parseID("team id", s)
	return TeamID(v), err
}

func ParseConversationID(s string) (ConversationID, error) {
	v, err := parseID("conversation id", s)
	return ConversationID(v), err
}

func ParseKeywordRuleID(s string) (KeywordRuleID, error) {
	v, err := parseID("keyword rule id", s)
	return KeywordRuleID(v), err
}
