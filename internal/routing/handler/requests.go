package handler

import (
	"strings"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
)

type FindTeamRequest struct {
	Message string `json:"message"`
}

func (r *FindTeamRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	return nil
}

type CreateRuleRequest struct {
	Keyword  string `json:"keyword"`
	TeamID   int64  `json:"teamId"`
	IsActive *bool  `json:"isActive"`
}

func (r *CreateRuleRequest) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return dErrors.New(dErrors.CodeValidation, "keyword is required")
	}
	if id.TeamID(r.TeamID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "teamId is required")
	}
	return nil
}

// Active defaults to true when the body leaves isActive out.
func (r *CreateRuleRequest) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

type UpdateRuleRequest struct {
	Keyword  *string `json:"keyword"`
	TeamID   *int64  `json:"teamId"`
	IsActive *bool   `json:"isActive"`
}

func (r *UpdateRuleRequest) Validate() error {
	if r.Keyword == nil && r.TeamID == nil && r.IsActive == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	if r.TeamID != nil && id.TeamID(*r.TeamID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "teamId must be positive")
	}
	return nil
}
