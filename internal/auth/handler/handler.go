// Package handler exposes the session endpoints of the core.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

type SessionService interface {
	Terminate(ctx context.Context, identityID id.IdentityID, sessionID string) error
}

// ActivityTracker forgets the identity's inactivity timer.
type ActivityTracker interface {
	End(identityID id.IdentityID)
}

type Handler struct {
	sessions   SessionService
	activity   ActivityTracker
	cookieName string
	logger     *slog.Logger
}

func New(sessions SessionService, activity ActivityTracker, cookieName string, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		activity:   activity,
		cookieName: cookieName,
		logger:     logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/logout", h.handleLogout)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	identityID := requestcontext.IdentityID(ctx)
	if identityID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.sessions.Terminate(ctx, identityID, requestcontext.SessionID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "failed to end session",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if h.activity != nil {
		h.activity.End(identityID)
	}
	if h.cookieName != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.WriteHeader(http.StatusNoContent)
}
