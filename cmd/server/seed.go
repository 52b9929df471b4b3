package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	assignmenthandler "crm/internal/assignment/handler"
	authzmodels "crm/internal/authz/models"
	convmodels "crm/internal/conversation/models"
	routingmodels "crm/internal/routing/models"
	teammodels "crm/internal/team/models"
	id "crm/pkg/domain"
)

type sessionStarter interface {
	StartSession(ctx context.Context, identityID id.IdentityID) (string, string, error)
}

const (
	devAdminID id.IdentityID = 1
	devAgentID id.IdentityID = 2
	devTeamID  id.TeamID     = 1
)

// seed loads a minimal org into the in-memory stores so the API is usable
// without a database: one admin, one agent, one team with a keyword rule and
// a handful of open conversations. Tokens for both users are logged.
func (m *memoryBackends) seed(ctx context.Context, sessions sessionStarter, log *slog.Logger) error {
	perm, err := authzmodels.NewPermission(assignmenthandler.AssignPermission, "atendimento", "assign conversations")
	if err != nil {
		return err
	}
	if err := m.rbac.CreatePermission(ctx, perm); err != nil {
		return err
	}
	role, err := authzmodels.NewRole("Agente", "front-line agent")
	if err != nil {
		return err
	}
	if err := m.rbac.CreateRole(ctx, role); err != nil {
		return err
	}
	if err := m.rbac.AttachPermission(ctx, role.ID, perm.ID); err != nil {
		return err
	}

	identities := []authzmodels.Identity{
		{ID: devAdminID, Name: "Admin", Email: "admin@crm.local", Role: "admin", IsActive: true},
		{ID: devAgentID, Name: "Agent", Email: "agent@crm.local", Role: role.Name, RoleID: role.ID,
			TeamID: devTeamID, TeamIDs: []id.TeamID{devTeamID}, IsActive: true},
	}
	for i := range identities {
		if err := m.rbac.SaveIdentity(ctx, &identities[i]); err != nil {
			return err
		}
		if err := m.teams.SaveUser(ctx, identities[i].ID); err != nil {
			return err
		}
	}

	if err := m.teams.SaveTeam(ctx, &teammodels.Team{ID: devTeamID, Name: "Suporte", Macrosetor: "suporte", IsActive: true}); err != nil {
		return err
	}
	if err := m.teams.SaveMembership(ctx, &teammodels.Membership{TeamID: devTeamID, UserID: devAgentID, RoleInTeam: "agent", IsActive: true}); err != nil {
		return err
	}

	now := time.Now()
	if err := m.rules.CreateRule(ctx, &routingmodels.KeywordRule{Keyword: "suporte", TeamID: devTeamID, IsActive: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		return err
	}
	for i := 1; i <= 5; i++ {
		if err := m.conversations.Save(ctx, &convmodels.Conversation{ID: id.ConversationID(i), Status: convmodels.StatusOpen, UpdatedAt: now}); err != nil {
			return err
		}
	}

	for _, identity := range identities {
		token, _, err := sessions.StartSession(ctx, identity.ID)
		if err != nil {
			return fmt.Errorf("start session for %s: %w", identity.Email, err)
		}
		log.Info("development session", "user_id", identity.ID.String(), "email", identity.Email, "token", token)
	}
	return nil
}
