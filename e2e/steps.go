package e2e

import (
	"github.com/cucumber/godog"

	"crm/e2e/steps/assignment"
	"crm/e2e/steps/common"
	"crm/e2e/steps/session"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, sign-in and generic assertions
	common.RegisterSteps(ctx, tc)

	// Team, user and keyword assignment
	assignment.RegisterSteps(ctx, tc)

	// Logout and revocation
	session.RegisterSteps(ctx, tc)
}
