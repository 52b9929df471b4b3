package models

import (
	"time"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	platformstrings "crm/pkg/platform/strings"
)

const MaxKeywordLength = 100

// KeywordRule routes messages containing Keyword to TeamID. Keyword is
// stored trimmed and lower-cased.
type KeywordRule struct {
	ID        id.KeywordRuleID `json:"id"`
	Keyword   string           `json:"keyword"`
	TeamID    id.TeamID        `json:"teamId"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Match is the outcome of routing a message.
type Match struct {
	Found    bool             `json:"found"`
	TeamID   id.TeamID        `json:"teamId,omitempty"`
	TeamName string           `json:"teamName,omitempty"`
	RuleID   id.KeywordRuleID `json:"-"`
}

// NormalizeKeyword is the single case policy for storing, comparing and
// matching keywords.
func NormalizeKeyword(keyword string) string {
	return platformstrings.Fold(keyword)
}

func ValidateKeyword(keyword string) (string, error) {
	k := NormalizeKeyword(keyword)
	if k == "" {
		return "", dErrors.New(dErrors.CodeValidation, "keyword is required")
	}
	if len([]rune(k)) > MaxKeywordLength {
		return "", dErrors.New(dErrors.CodeValidation, "keyword must be at most 100 characters")
	}
	return k, nil
}

// Better reports whether a beats b when both match the same message:
// the longer keyword wins, then the lower rule id.
func Better(a, b KeywordRule) bool {
	la, lb := len([]rune(a.Keyword)), len([]rune(b.Keyword))
	if la != lb {
		return la > lb
	}
	return a.ID < b.ID
}
