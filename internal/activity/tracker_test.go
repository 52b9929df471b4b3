package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	auditpublisher "crm/pkg/platform/audit/publisher"
	auditmemory "crm/pkg/platform/audit/store/memory"
	"crm/pkg/testutil"
)

type terminateCall struct {
	identityID id.IdentityID
	sessionID  string
}

type stubTerminator struct {
	calls []terminateCall
	err   error
}

func (s *stubTerminator) Terminate(_ context.Context, identityID id.IdentityID, sessionID string) error {
	s.calls = append(s.calls, terminateCall{identityID: identityID, sessionID: sessionID})
	return s.err
}

type TrackerSuite struct {
	suite.Suite
	clock      *fakeScheduler
	monitor    *Monitor
	terminator *stubTerminator
	audit      *auditmemory.InMemoryStore
	tracker    *Tracker
	handler    http.Handler
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.clock = &fakeScheduler{}
	s.monitor = NewMonitor(WithAfterFunc(s.clock.AfterFunc))
	s.terminator = &stubTerminator{}
	s.audit = auditmemory.NewInMemoryStore()
	s.tracker = NewTracker(s.monitor, s.terminator, auditpublisher.NewPublisher(s.audit),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.handler = s.tracker.Track(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *TrackerSuite) serve(req *http.Request) int {
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr.Code
}

func (s *TrackerSuite) TestAnonymousRequestsAreNotTracked() {
	s.Equal(http.StatusOK, s.serve(testutil.NewRequest(s.T(), http.MethodGet, "/")))
	s.Equal(0, s.monitor.Len())
}

func (s *TrackerSuite) TestIdleSessionIsTerminatedAndAudited() {
	req := testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "sess-1")
	s.serve(req)
	s.serve(req)
	s.Equal(1, s.monitor.Len())

	s.clock.last().f()

	s.Equal([]terminateCall{{identityID: 5, sessionID: "sess-1"}}, s.terminator.calls)
	entries := s.audit.ListByAction(context.Background(), audit.ActionSessionTimeout)
	s.Require().Len(entries, 1)
	s.Equal(audit.ResultSuccess, entries[0].Result)
	s.Equal("sess-1", entries[0].ResourceID)
	s.False(s.monitor.Pending(5))
}

func (s *TrackerSuite) TestEverySeenSessionIsTerminated() {
	s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "laptop"))
	s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "phone"))
	s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "laptop"))

	s.clock.last().f()

	s.Equal([]terminateCall{
		{identityID: 5, sessionID: "laptop"},
		{identityID: 5, sessionID: "phone"},
	}, s.terminator.calls)
	s.Len(s.audit.ListByAction(context.Background(), audit.ActionSessionTimeout), 2)

	s.Run("a later timeout only covers new sessions", func() {
		s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "tablet"))
		s.clock.last().f()
		s.Equal(terminateCall{identityID: 5, sessionID: "tablet"}, s.terminator.calls[len(s.terminator.calls)-1])
		s.Len(s.terminator.calls, 3)
	})
}

func (s *TrackerSuite) TestFailedLogoutIsAuditedAsFailure() {
	s.terminator.err = errors.New("redis down")
	s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "sess-1"))

	s.clock.last().f()

	entries := s.audit.ListByAction(context.Background(), audit.ActionSessionTimeout)
	s.Require().Len(entries, 1)
	s.Equal(audit.ResultFailure, entries[0].Result)
}

func (s *TrackerSuite) TestEndClearsTimer() {
	s.serve(testutil.WithSession(testutil.NewRequest(s.T(), http.MethodGet, "/"), 5, "sess-1"))
	s.tracker.End(5)
	s.False(s.monitor.Pending(5))
	s.clock.last().f()
	s.Empty(s.terminator.calls)
}
