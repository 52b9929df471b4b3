// Package handler exposes conversation assignment over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm/internal/assignment/models"
	authzmw "crm/internal/authz/middleware"
	id "crm/pkg/domain"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

// AssignPermission guards every assignment route.
const AssignPermission = "conversas:atribuir"

type Service interface {
	AssignConversationToTeam(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID, method models.Method) (*models.Result, error)
	AssignConversationToUser(ctx context.Context, conversationID id.ConversationID, userID id.IdentityID, method models.Method) (*models.Result, error)
	RouteConversation(ctx context.Context, conversationID id.ConversationID, message string) (*models.RouteResult, error)
	ReleaseConversation(ctx context.Context, conversationID id.ConversationID) error
}

type Handler struct {
	assignment Service
	gates      *authzmw.Gates
	logger     *slog.Logger
}

func New(assignment Service, gates *authzmw.Gates, logger *slog.Logger) *Handler {
	return &Handler{assignment: assignment, gates: gates, logger: logger}
}

// Register mounts the routes. A suppressed duplicate is a normal 200
// response with success=false.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/teams/{teamId}", func(r chi.Router) {
		r.Use(h.gates.RequirePermission(AssignPermission, authzmw.TeamFromURLParam("teamId")))
		r.Use(h.gates.RequireTeamAccess("teamId"))
		r.Post("/assign-conversation", h.handleAssignConversation)
		r.Post("/assign-user", h.handleAssignUser)
	})
	r.Route("/api/conversations/{id}", func(r chi.Router) {
		r.Use(h.gates.RequirePermission(AssignPermission, nil))
		r.Post("/route", h.handleRoute)
		r.Post("/release", h.handleRelease)
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleAssignConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID, err := id.ParseTeamID(chi.URLParam(r, "teamId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignConversationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.assignment.AssignConversationToTeam(ctx, id.ConversationID(req.ConversationID), teamID, req.method)
	if err != nil {
		h.fail(ctx, w, "failed to assign conversation to team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAssignUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := id.ParseTeamID(chi.URLParam(r, "teamId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignUserRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.assignment.AssignConversationToUser(ctx, id.ConversationID(req.ConversationID), id.IdentityID(req.UserID), req.method)
	if err != nil {
		h.fail(ctx, w, "failed to assign conversation to user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID, err := id.ParseConversationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RouteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.assignment.RouteConversation(ctx, conversationID, req.Message)
	if err != nil {
		h.fail(ctx, w, "failed to route conversation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID, err := id.ParseConversationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.assignment.ReleaseConversation(ctx, conversationID); err != nil {
		h.fail(ctx, w, "failed to release conversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
