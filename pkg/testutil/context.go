package testutil

import (
	"net/http"

	id "crm/pkg/domain"
	"crm/pkg/requestcontext"
)

// WithIdentity marks the request as authenticated by identityID, the way
// the session middleware would.
func WithIdentity(req *http.Request, identityID id.IdentityID) *http.Request {
	ctx := requestcontext.WithIdentityID(req.Context(), identityID)
	return req.WithContext(ctx)
}

// WithSession adds both identity and session id to the request context.
func WithSession(req *http.Request, identityID id.IdentityID, sessionID string) *http.Request {
	ctx := requestcontext.WithIdentityID(req.Context(), identityID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}
