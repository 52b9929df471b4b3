package common

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	SignInAs(identityID int64) error
	SignOut()
	GetLastStatus() int
	GetLastBody() string
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers background, sign-in and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the CRM API is reachable$`, steps.apiIsReachable)
	ctx.Step(`^I am signed in as user (\d+)$`, steps.signedInAs)
	ctx.Step(`^I am not signed in$`, steps.notSignedIn)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (.+)$`, steps.fieldShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) apiIsReachable(ctx context.Context) error {
	if err := s.tc.GET("/healthz"); err != nil {
		return err
	}
	if s.tc.GetLastStatus() != 200 {
		return fmt.Errorf("health check returned %d: %s", s.tc.GetLastStatus(), s.tc.GetLastBody())
	}
	return nil
}

func (s *commonSteps) signedInAs(ctx context.Context, identityID int64) error {
	return s.tc.SignInAs(identityID)
}

func (s *commonSteps) notSignedIn(ctx context.Context) error {
	s.tc.SignOut()
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.GetLastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.GetLastBody())
	}
	return nil
}

// fieldShouldBe compares against a JSON literal (true, 7, "text") or the
// word absent.
func (s *commonSteps) fieldShouldBe(ctx context.Context, field, literal string) error {
	if literal == "absent" {
		return s.fieldShouldBeAbsent(ctx, field)
	}
	var want any
	if err := json.Unmarshal([]byte(literal), &want); err != nil {
		return fmt.Errorf("expected value %s is not a JSON literal: %w", literal, err)
	}
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("field %q: expected %v, got %v", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeAbsent(ctx context.Context, field string) error {
	if _, err := s.tc.GetResponseField(field); err == nil {
		return fmt.Errorf("field %q should be absent: %s", field, s.tc.GetLastBody())
	}
	return nil
}
