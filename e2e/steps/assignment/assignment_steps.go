package assignment

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
}

// RegisterSteps registers assignment and routing step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &assignmentSteps{tc: tc}

	ctx.Step(`^I assign conversation (\d+) to team (\d+)$`, steps.assignToTeam)
	ctx.Step(`^I assign conversation (\d+) to team (\d+) again$`, steps.assignToTeam)
	ctx.Step(`^I assign conversation (\d+) to user (\d+) of team (\d+)$`, steps.assignToUser)
	ctx.Step(`^I route conversation (\d+) with message "([^"]*)"$`, steps.route)
	ctx.Step(`^I release conversation (\d+)$`, steps.release)
	ctx.Step(`^I look up the team for message "([^"]*)"$`, steps.findTeam)
}

type assignmentSteps struct {
	tc TestContext
}

func (s *assignmentSteps) assignToTeam(ctx context.Context, conversationID, teamID int64) error {
	return s.tc.POST(fmt.Sprintf("/api/teams/%d/assign-conversation", teamID), map[string]any{
		"conversationId": conversationID,
	})
}

func (s *assignmentSteps) assignToUser(ctx context.Context, conversationID, userID, teamID int64) error {
	return s.tc.POST(fmt.Sprintf("/api/teams/%d/assign-user", teamID), map[string]any{
		"conversationId": conversationID,
		"userId":         userID,
	})
}

func (s *assignmentSteps) route(ctx context.Context, conversationID int64, message string) error {
	return s.tc.POST(fmt.Sprintf("/api/conversations/%d/route", conversationID), map[string]any{
		"message": message,
	})
}

func (s *assignmentSteps) release(ctx context.Context, conversationID int64) error {
	return s.tc.POST(fmt.Sprintf("/api/conversations/%d/release", conversationID), nil)
}

func (s *assignmentSteps) findTeam(ctx context.Context, message string) error {
	return s.tc.POST("/api/keyword-routing/find-team", map[string]any{
		"message": message,
	})
}
