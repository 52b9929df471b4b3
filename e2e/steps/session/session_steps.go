package session

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
}

// RegisterSteps registers session lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &sessionSteps{tc: tc}

	ctx.Step(`^I log out$`, steps.logout)
}

type sessionSteps struct {
	tc TestContext
}

func (s *sessionSteps) logout(ctx context.Context) error {
	return s.tc.POST("/api/auth/logout", nil)
}
