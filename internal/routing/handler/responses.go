package handler

import "crm/internal/routing/models"

// FindTeamResponse carries null team fields when nothing matched.
type FindTeamResponse struct {
	Found    bool    `json:"found"`
	TeamID   *int64  `json:"teamId"`
	TeamName *string `json:"teamName"`
}

func toFindTeamResponse(m *models.Match) FindTeamResponse {
	if m == nil || !m.Found {
		return FindTeamResponse{}
	}
	teamID := int64(m.TeamID)
	name := m.TeamName
	return FindTeamResponse{Found: true, TeamID: &teamID, TeamName: &name}
}
