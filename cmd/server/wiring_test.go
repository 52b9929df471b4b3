package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"crm/internal/assignment/models"
	"crm/internal/auth/token"
	"crm/internal/platform/config"
	id "crm/pkg/domain"
	"crm/pkg/testutil"
)

type findTeamBody struct {
	Found  bool   `json:"found"`
	TeamID *int64 `json:"teamId"`
}

// WiringSuite builds the whole application once, in memory mode, and drives
// it through the router. Metrics register globally, so build runs only once
// per test binary.
type WiringSuite struct {
	suite.Suite
	app    *app
	tokens *token.Service
}

func TestWiringSuite(t *testing.T) {
	suite.Run(t, new(WiringSuite))
}

func (s *WiringSuite) SetupSuite() {
	t := s.T()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := build(context.Background(), cfg, logger)
	require.NoError(t, err)
	s.app = a
	s.tokens = token.NewService(cfg.Session.SigningKey, tokenIssuer, tokenAudience)
}

func (s *WiringSuite) TearDownSuite() {
	s.app.hub.Close()
	s.app.close()
}

func (s *WiringSuite) bearer(identityID id.IdentityID) string {
	tok, err := s.tokens.Issue(identityID, "wiring-"+identityID.String(), time.Hour)
	s.Require().NoError(err)
	return "Bearer " + tok
}

func (s *WiringSuite) TestStorageModeIsMemory() {
	s.Equal("memory", s.app.storage)
}

func (s *WiringSuite) TestHealthz() {
	rr := testutil.DoRequest(s.app.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *WiringSuite) TestRequiresAuthentication() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/teams/1/assign-conversation",
		map[string]any{"conversationId": 1})
	rr := testutil.DoRequest(s.app.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *WiringSuite) TestAdminAssignsSeededConversation() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/teams/1/assign-conversation",
		map[string]any{"conversationId": 1})
	req.Header.Set("Authorization", s.bearer(devAdminID))

	rr := testutil.DoRequest(s.app.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	res := testutil.UnmarshalResponse[models.Result](s.T(), rr)
	s.True(res.Success)
	s.Equal(devTeamID, res.TeamID)
	s.Equal(devAgentID, res.UserID)
}

func (s *WiringSuite) TestAgentIsKeptToTheirTeam() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/teams/99/assign-conversation",
		map[string]any{"conversationId": 2})
	req.Header.Set("Authorization", s.bearer(devAgentID))

	rr := testutil.DoRequest(s.app.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
}

func (s *WiringSuite) TestSeededKeywordRoutes() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/keyword-routing/find-team",
		map[string]any{"message": "Preciso de SUPORTE"})
	req.Header.Set("Authorization", s.bearer(devAgentID))

	rr := testutil.DoRequest(s.app.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[findTeamBody](s.T(), rr)
	s.True(body.Found)
	s.Require().NotNil(body.TeamID)
	s.Equal(int64(devTeamID), *body.TeamID)
}
