// Package service assigns conversations to teams and agents. Every entry
// point runs the duplicate guard before touching storage, so redelivered
// webhooks and double clicks collapse into one assignment.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"crm/internal/assignment/metrics"
	"crm/internal/assignment/models"
	convmodels "crm/internal/conversation/models"
	"crm/internal/realtime"
	routingmodels "crm/internal/routing/models"
	teammodels "crm/internal/team/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	"crm/pkg/platform/sentinel"
	"crm/pkg/requestcontext"
)

var tracer = otel.Tracer("crm/internal/assignment/service")

type TeamStore interface {
	FindTeam(ctx context.Context, teamID id.TeamID) (*teammodels.Team, error)
	ListActiveMembers(ctx context.Context, teamID id.TeamID) ([]teammodels.Membership, error)
	UserExists(ctx context.Context, userID id.IdentityID) (bool, error)
}

type ConversationStore interface {
	Find(ctx context.Context, conversationID id.ConversationID) (*convmodels.Conversation, error)
	AssignTeam(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID, method string, at time.Time) error
	AssignUser(ctx context.Context, conversationID id.ConversationID, userID id.IdentityID, method string, at time.Time) error
	Close(ctx context.Context, conversationID id.ConversationID, at time.Time) error
}

type Deduplicator interface {
	ShouldBlock(ctx context.Context, op models.Operation) bool
	ClearConversation(ctx context.Context, conversationID id.ConversationID) error
}

type UserSelector interface {
	AssignUserToConversation(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID) (models.Selection, error)
}

type KeywordRouter interface {
	FindTeamByMessage(ctx context.Context, message string) (*routingmodels.Match, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	teams         TeamStore
	conversations ConversationStore
	dedup         Deduplicator
	selector      UserSelector

	router         KeywordRouter
	auditPublisher AuditPublisher
	broadcaster    realtime.Broadcaster
	logger         *slog.Logger
	metrics        *metrics.Metrics
	intN           func(n int) int
}

type Option func(*Service)

func WithKeywordRouter(router KeywordRouter) Option {
	return func(s *Service) {
		s.router = router
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithBroadcaster(b realtime.Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRandom replaces the source used by the fallback pick. intN must
// return a value in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(s *Service) {
		if intN != nil {
			s.intN = intN
		}
	}
}

func New(teams TeamStore, conversations ConversationStore, dedup Deduplicator, selector UserSelector, opts ...Option) (*Service, error) {
	if teams == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "team store is required")
	}
	if conversations == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "conversation store is required")
	}
	if dedup == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "duplicate guard is required")
	}
	if selector == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "user selector is required")
	}
	s := &Service{
		teams:         teams,
		conversations: conversations,
		dedup:         dedup,
		selector:      selector,
		broadcaster:   realtime.Nop{},
		logger:        slog.Default(),
		intN:          rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AssignConversationToTeam moves conversationID to teamID and hands it to
// one of the team's active members. A repeat of the same assignment inside
// the isolation window returns Success=false and changes nothing.
//
// The team and user writes are not atomic: if the user step fails the
// conversation stays with the team and no one in it, and a later call can
// retry the selection.
func (s *Service) AssignConversationToTeam(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID, method models.Method) (*models.Result, error) {
	ctx, span := tracer.Start(ctx, "assignment.AssignConversationToTeam", trace.WithAttributes(
		attribute.Int64("conversation.id", int64(conversationID)),
		attribute.Int64("team.id", int64(teamID)),
		attribute.String("assignment.method", string(method)),
	))
	defer span.End()
	defer s.metrics.ObserveAssignment("team", time.Now())

	if conversationID.IsNil() {
		return nil, fail(span, dErrors.New(dErrors.CodeValidation, "conversationId is required"))
	}
	if teamID.IsNil() {
		return nil, fail(span, dErrors.New(dErrors.CodeValidation, "teamId is required"))
	}
	if method == "" {
		method = models.MethodManual
	}

	if err := s.requireActiveTeam(ctx, teamID); err != nil {
		return nil, fail(span, err)
	}
	if _, err := s.findConversation(ctx, conversationID); err != nil {
		return nil, fail(span, err)
	}

	now := requestcontext.Now(ctx)
	op := models.Operation{
		ConversationID: conversationID,
		TeamID:         teamID,
		Timestamp:      now,
		Source:         models.SourceTeamAssignment,
	}
	if s.dedup.ShouldBlock(ctx, op) {
		s.logger.InfoContext(ctx, "duplicate team assignment suppressed",
			"conversation_id", conversationID,
			"team_id", teamID,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.SetAttributes(attribute.Bool("assignment.suppressed", true))
		s.metrics.IncAssignment("team", "suppressed")
		return &models.Result{Success: false, TeamID: teamID}, nil
	}

	if err := s.conversations.AssignTeam(ctx, conversationID, teamID, string(method), now); err != nil {
		// Nothing was written, so a retry must not be taken for a repeat.
		s.forgetOperation(ctx, conversationID)
		s.metrics.IncAssignment("team", "failed")
		return nil, fail(span, translateConversation(err, "failed to assign team"))
	}

	result := &models.Result{Success: true, TeamID: teamID, Method: method}
	userMethod := models.MethodRoundRobin
	sel, err := s.selector.AssignUserToConversation(ctx, conversationID, teamID)
	if err != nil {
		s.metrics.IncAssignment("team", "failed")
		return nil, fail(span, err)
	}
	if !sel.Success {
		userMethod = models.MethodRandom
		sel, err = s.pickRandomMember(ctx, conversationID, teamID, now)
		if err != nil {
			s.metrics.IncAssignment("team", "failed")
			return nil, fail(span, err)
		}
	}
	if sel.Success {
		result.UserID = sel.UserID
		span.SetAttributes(
			attribute.Int64("user.id", int64(sel.UserID)),
			attribute.String("assignment.user_method", string(userMethod)),
		)
	} else {
		s.logger.WarnContext(ctx, "team has no active members, conversation left unassigned",
			"conversation_id", conversationID,
			"team_id", teamID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	details := map[string]any{
		"team_id": int64(teamID),
		"method":  string(method),
	}
	if sel.Success {
		details["user_id"] = int64(sel.UserID)
		details["user_method"] = string(userMethod)
	}
	s.logAudit(ctx, audit.ActionTeamAssignment, conversationID, details)
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:           realtime.EventAssignedToTeam,
		ConversationID: conversationID,
		TeamID:         teamID,
		UserID:         result.UserID,
		Method:         string(method),
		Timestamp:      now,
	})
	s.metrics.IncAssignment("team", "assigned")
	return result, nil
}

// AssignConversationToUser hands conversationID to userID directly. A repeat
// inside the isolation window returns Success=false and changes nothing.
func (s *Service) AssignConversationToUser(ctx context.Context, conversationID id.ConversationID, userID id.IdentityID, method models.Method) (*models.Result, error) {
	ctx, span := tracer.Start(ctx, "assignment.AssignConversationToUser", trace.WithAttributes(
		attribute.Int64("conversation.id", int64(conversationID)),
		attribute.Int64("user.id", int64(userID)),
		attribute.String("assignment.method", string(method)),
	))
	defer span.End()
	defer s.metrics.ObserveAssignment("user", time.Now())

	if conversationID.IsNil() {
		return nil, fail(span, dErrors.New(dErrors.CodeValidation, "conversationId is required"))
	}
	if userID.IsNil() {
		return nil, fail(span, dErrors.New(dErrors.CodeValidation, "userId is required"))
	}
	if method == "" {
		method = models.MethodManual
	}

	exists, err := s.teams.UserExists(ctx, userID)
	if err != nil {
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user"))
	}
	if !exists {
		return nil, fail(span, dErrors.New(dErrors.CodeNotFound, "user not found"))
	}
	conv, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, fail(span, err)
	}

	now := requestcontext.Now(ctx)
	op := models.Operation{
		ConversationID: conversationID,
		UserID:         userID,
		Timestamp:      now,
		Source:         models.SourceUserAssignment,
	}
	if s.dedup.ShouldBlock(ctx, op) {
		s.logger.InfoContext(ctx, "duplicate user assignment suppressed",
			"conversation_id", conversationID,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.SetAttributes(attribute.Bool("assignment.suppressed", true))
		s.metrics.IncAssignment("user", "suppressed")
		return &models.Result{Success: false, UserID: userID}, nil
	}

	if err := s.conversations.AssignUser(ctx, conversationID, userID, string(method), now); err != nil {
		s.forgetOperation(ctx, conversationID)
		s.metrics.IncAssignment("user", "failed")
		return nil, fail(span, translateConversation(err, "failed to assign user"))
	}

	s.logAudit(ctx, audit.ActionUserAssignment, conversationID, map[string]any{
		"user_id": int64(userID),
		"method":  string(method),
	})
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:           realtime.EventAssignedToUser,
		ConversationID: conversationID,
		TeamID:         conv.AssignedTeamID,
		UserID:         userID,
		Method:         string(method),
		Timestamp:      now,
	})
	s.metrics.IncAssignment("user", "assigned")
	return &models.Result{Success: true, UserID: userID, Method: method}, nil
}

// RouteConversation picks a team for message by keyword and assigns the
// conversation to it. Matched is false when no active rule applies; the
// conversation is then left as it was.
func (s *Service) RouteConversation(ctx context.Context, conversationID id.ConversationID, message string) (*models.RouteResult, error) {
	if s.router == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "keyword routing is not configured")
	}
	if conversationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "conversationId is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message is required")
	}

	match, err := s.router.FindTeamByMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	if !match.Found {
		return &models.RouteResult{Matched: false}, nil
	}

	result, err := s.AssignConversationToTeam(ctx, conversationID, match.TeamID, models.MethodKeyword)
	if err != nil {
		return nil, err
	}
	return &models.RouteResult{
		Matched:  true,
		TeamID:   match.TeamID,
		TeamName: match.TeamName,
		Result:   result,
	}, nil
}

// ReleaseConversation closes the conversation and forgets its recorded
// assignment, so a reopened conversation can be assigned again at once.
func (s *Service) ReleaseConversation(ctx context.Context, conversationID id.ConversationID) error {
	if conversationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "conversationId is required")
	}
	if err := s.conversations.Close(ctx, conversationID, requestcontext.Now(ctx)); err != nil {
		return translateConversation(err, "failed to close conversation")
	}
	s.forgetOperation(ctx, conversationID)
	s.logAudit(ctx, audit.ActionConversationReleased, conversationID, nil)
	return nil
}

// forgetOperation drops the guard's record for conversationID. A failure
// only means the next call may be suppressed until the window ends.
func (s *Service) forgetOperation(ctx context.Context, conversationID id.ConversationID) {
	if err := s.dedup.ClearConversation(ctx, conversationID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear duplicate guard entry",
			"conversation_id", conversationID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// pickRandomMember is the fallback when rotation cannot pick anyone. Only
// active members are candidates.
func (s *Service) pickRandomMember(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID, at time.Time) (models.Selection, error) {
	members, err := s.teams.ListActiveMembers(ctx, teamID)
	if err != nil {
		return models.Selection{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list team members")
	}
	var candidates []teammodels.Membership
	for _, m := range members {
		if m.IsActive {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		s.metrics.IncSelection(string(models.MethodRandom), false)
		return models.Selection{}, nil
	}

	chosen := candidates[s.intN(len(candidates))].UserID
	if err := s.conversations.AssignUser(ctx, conversationID, chosen, string(models.MethodRandom), at); err != nil {
		return models.Selection{}, translateConversation(err, "failed to assign user")
	}
	s.metrics.IncSelection(string(models.MethodRandom), true)
	return models.Selection{Success: true, UserID: chosen}, nil
}

func (s *Service) requireActiveTeam(ctx context.Context, teamID id.TeamID) error {
	team, err := s.teams.FindTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load team")
	}
	if !team.IsActive {
		return dErrors.New(dErrors.CodeNotFound, "team not found or inactive")
	}
	return nil
}

func (s *Service) findConversation(ctx context.Context, conversationID id.ConversationID) (*convmodels.Conversation, error) {
	conv, err := s.conversations.Find(ctx, conversationID)
	if err != nil {
		return nil, translateConversation(err, "failed to load conversation")
	}
	return conv, nil
}

func translateConversation(err error, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "conversation not found")
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) logAudit(ctx context.Context, action string, conversationID id.ConversationID, details map[string]any) {
	requestID := requestcontext.RequestID(ctx)
	args := []any{
		"event", action,
		"log_type", "audit",
		"conversation_id", conversationID,
		"request_id", requestID,
	}
	for k, v := range details {
		args = append(args, k, v)
	}
	s.logger.InfoContext(ctx, action, args...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		IdentityID: requestcontext.IdentityID(ctx),
		Action:     action,
		Resource:   "conversation",
		ResourceID: conversationID.String(),
		Details:    details,
		Result:     audit.ResultSuccess,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record audit entry",
			"action", action,
			"error", err,
			"request_id", requestID,
		)
	}
}
