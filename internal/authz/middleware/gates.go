// Package middleware gates HTTP routes on permission checks. Every gate
// answers 401 when no identity is present and 403, with a failure audit
// entry, when the identity is denied.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm/internal/authz/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

type Evaluator interface {
	HasPermission(ctx context.Context, identityID id.IdentityID, name string, access *models.AccessContext) bool
	HasAnyPermission(ctx context.Context, identityID id.IdentityID, names []string, access *models.AccessContext) bool
	IsAdmin(ctx context.Context, identityID id.IdentityID) bool
	BelongsToTeam(ctx context.Context, identityID id.IdentityID, teamID id.TeamID) bool
	LogAction(ctx context.Context, entry audit.Entry)
}

// ContextFunc derives the access context a permission is checked against.
// Returning an error rejects the request with that error.
type ContextFunc func(r *http.Request) (*models.AccessContext, error)

// TeamFromURLParam scopes the check to the team named by a chi URL param.
func TeamFromURLParam(param string) ContextFunc {
	return func(r *http.Request) (*models.AccessContext, error) {
		teamID, err := id.ParseTeamID(chi.URLParam(r, param))
		if err != nil {
			return nil, err
		}
		return &models.AccessContext{TeamID: teamID}, nil
	}
}

type Gates struct {
	evaluator Evaluator
	logger    *slog.Logger
}

func New(evaluator Evaluator, logger *slog.Logger) *Gates {
	return &Gates{evaluator: evaluator, logger: logger}
}

// RequirePermission grants when the identity holds name. ctxFn may be nil.
func (g *Gates) RequirePermission(name string, ctxFn ContextFunc) func(http.Handler) http.Handler {
	return g.gate(func(r *http.Request, identityID id.IdentityID) (bool, map[string]any, error) {
		var access *models.AccessContext
		if ctxFn != nil {
			a, err := ctxFn(r)
			if err != nil {
				return false, nil, err
			}
			access = a
		}
		details := map[string]any{"permission": name}
		if access != nil && !access.TeamID.IsNil() {
			details["team_id"] = int64(access.TeamID)
		}
		return g.evaluator.HasPermission(r.Context(), identityID, name, access), details, nil
	})
}

func (g *Gates) RequireAnyPermission(names ...string) func(http.Handler) http.Handler {
	return g.gate(func(r *http.Request, identityID id.IdentityID) (bool, map[string]any, error) {
		return g.evaluator.HasAnyPermission(r.Context(), identityID, names, nil),
			map[string]any{"permissions": names}, nil
	})
}

func (g *Gates) RequireAdmin() func(http.Handler) http.Handler {
	return g.gate(func(r *http.Request, identityID id.IdentityID) (bool, map[string]any, error) {
		return g.evaluator.IsAdmin(r.Context(), identityID), map[string]any{"requirement": "admin"}, nil
	})
}

// RequireTeamAccess lets admins through and otherwise requires the team in
// the URL param to be the identity's primary team.
func (g *Gates) RequireTeamAccess(param string) func(http.Handler) http.Handler {
	return g.gate(func(r *http.Request, identityID id.IdentityID) (bool, map[string]any, error) {
		teamID, err := id.ParseTeamID(chi.URLParam(r, param))
		if err != nil {
			return false, nil, err
		}
		details := map[string]any{"requirement": "team_access", "team_id": int64(teamID)}
		ctx := r.Context()
		if g.evaluator.IsAdmin(ctx, identityID) {
			return true, details, nil
		}
		return g.evaluator.BelongsToTeam(ctx, identityID, teamID), details, nil
	})
}

type check func(r *http.Request, identityID id.IdentityID) (bool, map[string]any, error)

func (g *Gates) gate(fn check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identityID := requestcontext.IdentityID(ctx)
			if identityID.IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			granted, details, err := fn(r, identityID)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			if granted {
				next.ServeHTTP(w, r)
				return
			}

			if details == nil {
				details = map[string]any{}
			}
			details["method"] = r.Method
			details["path"] = r.URL.Path
			g.evaluator.LogAction(ctx, audit.Entry{
				IdentityID: identityID,
				Action:     audit.ActionPermissionDenied,
				Resource:   "route",
				ResourceID: r.Method + " " + r.URL.Path,
				Details:    details,
				Result:     audit.ResultFailure,
			})
			g.logger.WarnContext(ctx, "access denied",
				"identity_id", identityID,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient permissions"))
		})
	}
}
