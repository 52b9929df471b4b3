// Package handler exposes keyword routing over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authzmw "crm/internal/authz/middleware"
	"crm/internal/routing/models"
	"crm/internal/routing/service"
	id "crm/pkg/domain"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

// ManagePermission guards rule mutations.
const ManagePermission = "roteamento:gerenciar"

type Service interface {
	FindTeamByMessage(ctx context.Context, message string) (*models.Match, error)
	ListRules(ctx context.Context) ([]models.KeywordRule, error)
	GetRule(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error)
	CreateRule(ctx context.Context, keyword string, teamID id.TeamID, isActive bool) (*models.KeywordRule, error)
	UpdateRule(ctx context.Context, ruleID id.KeywordRuleID, upd service.RuleUpdate) (*models.KeywordRule, error)
	DeleteRule(ctx context.Context, ruleID id.KeywordRuleID) error
	ToggleStatus(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error)
}

type Handler struct {
	routing Service
	gates   *authzmw.Gates
	logger  *slog.Logger
}

func New(routing Service, gates *authzmw.Gates, logger *slog.Logger) *Handler {
	return &Handler{routing: routing, gates: gates, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/keyword-routing", func(r chi.Router) {
		r.Post("/find-team", h.handleFindTeam)
		r.Get("/", h.handleListRules)
		r.Get("/{id}", h.handleGetRule)

		r.Group(func(r chi.Router) {
			r.Use(h.gates.RequirePermission(ManagePermission, nil))
			r.Post("/", h.handleCreateRule)
			r.Put("/{id}", h.handleUpdateRule)
			r.Delete("/{id}", h.handleDeleteRule)
			r.Post("/{id}/toggle", h.handleToggle)
		})
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleFindTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[FindTeamRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	match, err := h.routing.FindTeamByMessage(ctx, req.Message)
	if err != nil {
		h.fail(ctx, w, "failed to route message", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFindTeamResponse(match))
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rules, err := h.routing.ListRules(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list keyword rules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rules)
}

func (h *Handler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID, err := id.ParseKeywordRuleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rule, err := h.routing.GetRule(ctx, ruleID)
	if err != nil {
		h.fail(ctx, w, "failed to load keyword rule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRuleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rule, err := h.routing.CreateRule(ctx, req.Keyword, id.TeamID(req.TeamID), req.Active())
	if err != nil {
		h.fail(ctx, w, "failed to create keyword rule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rule)
}

func (h *Handler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID, err := id.ParseKeywordRuleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRuleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	upd := service.RuleUpdate{Keyword: req.Keyword, IsActive: req.IsActive}
	if req.TeamID != nil {
		teamID := id.TeamID(*req.TeamID)
		upd.TeamID = &teamID
	}
	rule, err := h.routing.UpdateRule(ctx, ruleID, upd)
	if err != nil {
		h.fail(ctx, w, "failed to update keyword rule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID, err := id.ParseKeywordRuleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.routing.DeleteRule(ctx, ruleID); err != nil {
		h.fail(ctx, w, "failed to delete keyword rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID, err := id.ParseKeywordRuleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rule, err := h.routing.ToggleStatus(ctx, ruleID)
	if err != nil {
		h.fail(ctx, w, "failed to toggle keyword rule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}
