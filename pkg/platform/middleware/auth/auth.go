package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/platform/httputil"
	request "crm/pkg/platform/middleware/request"
	"crm/pkg/requestcontext"
)

// Authenticator resolves a session token to the identity behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (id.IdentityID, string, error)
}

// GetIdentityID retrieves the authenticated identity from the context.
func GetIdentityID(ctx context.Context) id.IdentityID {
	return requestcontext.IdentityID(ctx)
}

// GetSessionID retrieves the session id from the context.
func GetSessionID(ctx context.Context) string {
	return requestcontext.SessionID(ctx)
}

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie set by the browser front end.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401 and stores the identity
// and session id on the context of authenticated ones. No audit entry is
// written for a missing identity.
func RequireAuth(authenticator Authenticator, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token := tokenFromRequest(r, cookieName)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			identityID, sessionID, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - invalid session",
						"error", err,
						"request_id", requestID,
					)
				} else {
					logger.ErrorContext(ctx, "failed to authenticate session",
						"error", err,
						"request_id", requestID,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithIdentityID(ctx, identityID)
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
