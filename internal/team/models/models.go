package models

import id "crm/pkg/domain"

// Team groups agents that serve one business area (macrosetor).
type Team struct {
	ID          id.TeamID `json:"id"`
	Name        string    `json:"name"`
	Macrosetor  string    `json:"macrosetor,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
}

type Membership struct {
	TeamID     id.TeamID     `json:"teamId"`
	UserID     id.IdentityID `json:"userId"`
	RoleInTeam string        `json:"roleInTeam,omitempty"`
	IsActive   bool          `json:"isActive"`
}
