// Package service routes inbound messages to teams by keyword and manages
// the keyword rules.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"crm/internal/routing/metrics"
	"crm/internal/routing/models"
	"crm/internal/routing/store"
	teammodels "crm/internal/team/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	"crm/pkg/platform/sentinel"
	"crm/pkg/requestcontext"
)

type RuleStore interface {
	ListRules(ctx context.Context) ([]models.KeywordRule, error)
	ListActiveRules(ctx context.Context) ([]models.KeywordRule, error)
	FindRule(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error)
	FindByKeyword(ctx context.Context, keyword string) (*models.KeywordRule, error)
	CreateRule(ctx context.Context, r *models.KeywordRule) error
	UpdateRule(ctx context.Context, r *models.KeywordRule) error
	DeleteRule(ctx context.Context, ruleID id.KeywordRuleID) error
}

type TeamFinder interface {
	FindTeam(ctx context.Context, teamID id.TeamID) (*teammodels.Team, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// RuleUpdate carries the optional fields of a rule edit.
type RuleUpdate struct {
	Keyword  *string
	TeamID   *id.TeamID
	IsActive *bool
}

type Service struct {
	rules          RuleStore
	teams          TeamFinder
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(rules RuleStore, teams TeamFinder, opts ...Option) (*Service, error) {
	if rules == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "keyword rule store is required")
	}
	if teams == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "team store is required")
	}
	s := &Service{
		rules:  rules,
		teams:  teams,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FindTeamByMessage matches message case-insensitively against the active
// rules. When several keywords occur, the longest wins and ties go to the
// lowest rule id. A rule whose team is missing or inactive is skipped in
// favour of the next best match.
func (s *Service) FindTeamByMessage(ctx context.Context, message string) (*models.Match, error) {
	text := strings.ToLower(message)
	if strings.TrimSpace(text) == "" {
		s.metrics.IncLookup(false)
		return &models.Match{}, nil
	}

	active, err := s.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load keyword rules")
	}

	var candidates []models.KeywordRule
	for _, rule := range active {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			candidates = append(candidates, rule)
		}
	}
	slices.SortFunc(candidates, func(a, b models.KeywordRule) int {
		switch {
		case models.Better(a, b):
			return -1
		case models.Better(b, a):
			return 1
		default:
			return 0
		}
	})

	for _, rule := range candidates {
		team, err := s.teams.FindTeam(ctx, rule.TeamID)
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "keyword rule points at a missing team",
				"rule_id", rule.ID,
				"team_id", rule.TeamID,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load team")
		}
		if !team.IsActive {
			s.logger.InfoContext(ctx, "keyword rule points at an inactive team",
				"rule_id", rule.ID,
				"team_id", rule.TeamID,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}

		s.metrics.IncLookup(true)
		return &models.Match{
			Found:    true,
			TeamID:   team.ID,
			TeamName: team.Name,
			RuleID:   rule.ID,
		}, nil
	}

	s.metrics.IncLookup(false)
	return &models.Match{}, nil
}

// KeywordExists reports whether another rule already uses keyword.
// excludingID may be zero.
func (s *Service) KeywordExists(ctx context.Context, keyword string, excludingID id.KeywordRuleID) (bool, error) {
	r, err := s.rules.FindByKeyword(ctx, keyword)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check keyword")
	}
	return r.ID != excludingID, nil
}

func (s *Service) ListRules(ctx context.Context) ([]models.KeywordRule, error) {
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list keyword rules")
	}
	return rules, nil
}

func (s *Service) GetRule(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error) {
	r, err := s.rules.FindRule(ctx, ruleID)
	if err != nil {
		return nil, translate(err, "failed to load keyword rule")
	}
	return r, nil
}

func (s *Service) CreateRule(ctx context.Context, keyword string, teamID id.TeamID, isActive bool) (*models.KeywordRule, error) {
	k, err := models.ValidateKeyword(keyword)
	if err != nil {
		return nil, err
	}
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.requireUnique(ctx, k, 0); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	r := &models.KeywordRule{
		Keyword:   k,
		TeamID:    teamID,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rules.CreateRule(ctx, r); err != nil {
		return nil, translate(err, "failed to create keyword rule")
	}
	s.metrics.IncRuleChange("create")
	s.logAudit(ctx, audit.ActionKeywordRuleCreated, r)
	return r, nil
}

func (s *Service) UpdateRule(ctx context.Context, ruleID id.KeywordRuleID, upd RuleUpdate) (*models.KeywordRule, error) {
	current, err := s.rules.FindRule(ctx, ruleID)
	if err != nil {
		return nil, translate(err, "failed to load keyword rule")
	}

	if upd.Keyword != nil {
		k, err := models.ValidateKeyword(*upd.Keyword)
		if err != nil {
			return nil, err
		}
		if k != current.Keyword {
			if err := s.requireUnique(ctx, k, current.ID); err != nil {
				return nil, err
			}
		}
		current.Keyword = k
	}
	if upd.TeamID != nil && *upd.TeamID != current.TeamID {
		if err := s.requireTeam(ctx, *upd.TeamID); err != nil {
			return nil, err
		}
		current.TeamID = *upd.TeamID
	}
	if upd.IsActive != nil {
		current.IsActive = *upd.IsActive
	}
	current.UpdatedAt = requestcontext.Now(ctx)

	if err := s.rules.UpdateRule(ctx, current); err != nil {
		return nil, translate(err, "failed to update keyword rule")
	}
	s.metrics.IncRuleChange("update")
	s.logAudit(ctx, audit.ActionKeywordRuleUpdated, current)
	return current, nil
}

func (s *Service) DeleteRule(ctx context.Context, ruleID id.KeywordRuleID) error {
	current, err := s.rules.FindRule(ctx, ruleID)
	if err != nil {
		return translate(err, "failed to load keyword rule")
	}
	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		return translate(err, "failed to delete keyword rule")
	}
	s.metrics.IncRuleChange("delete")
	s.logAudit(ctx, audit.ActionKeywordRuleDeleted, current)
	return nil
}

// ToggleStatus flips IsActive and returns the updated rule.
func (s *Service) ToggleStatus(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error) {
	current, err := s.rules.FindRule(ctx, ruleID)
	if err != nil {
		return nil, translate(err, "failed to load keyword rule")
	}
	current.IsActive = !current.IsActive
	current.UpdatedAt = requestcontext.Now(ctx)
	if err := s.rules.UpdateRule(ctx, current); err != nil {
		return nil, translate(err, "failed to toggle keyword rule")
	}
	s.metrics.IncRuleChange("toggle")
	s.logAudit(ctx, audit.ActionKeywordRuleToggled, current)
	return current, nil
}

func (s *Service) requireTeam(ctx context.Context, teamID id.TeamID) error {
	if teamID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "teamId is required")
	}
	if _, err := s.teams.FindTeam(ctx, teamID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load team")
	}
	return nil
}

func (s *Service) requireUnique(ctx context.Context, keyword string, excludingID id.KeywordRuleID) error {
	exists, err := s.KeywordExists(ctx, keyword, excludingID)
	if err != nil {
		return err
	}
	if exists {
		return dErrors.New(dErrors.CodeConflict, "keyword already in use")
	}
	return nil
}

func translate(err error, internal string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "keyword rule not found")
	case errors.Is(err, store.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "keyword already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internal)
	}
}

func (s *Service) logAudit(ctx context.Context, action string, r *models.KeywordRule) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, action,
		"event", action,
		"log_type", "audit",
		"rule_id", r.ID,
		"keyword", r.Keyword,
		"team_id", r.TeamID,
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		IdentityID: requestcontext.IdentityID(ctx),
		Action:     action,
		Resource:   "keyword_rule",
		ResourceID: r.ID.String(),
		Details: map[string]any{
			"keyword":   r.Keyword,
			"team_id":   int64(r.TeamID),
			"is_active": r.IsActive,
		},
		Result: audit.ResultSuccess,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record audit entry",
			"action", action,
			"error", err,
			"request_id", requestID,
		)
	}
}
