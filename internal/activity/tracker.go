package activity

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	"crm/pkg/requestcontext"
)

const logoutTimeout = 5 * time.Second

type SessionTerminator interface {
	Terminate(ctx context.Context, identityID id.IdentityID, sessionID string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Tracker connects the monitor to HTTP traffic and performs the forced
// logout when an identity goes idle. The timer is per identity, so every
// session seen since the last expiry is ended together.
type Tracker struct {
	monitor        *Monitor
	sessions       SessionTerminator
	auditPublisher AuditPublisher
	logger         *slog.Logger

	mu   sync.Mutex
	seen map[id.IdentityID][]string
}

func NewTracker(monitor *Monitor, sessions SessionTerminator, auditPublisher AuditPublisher, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		monitor:        monitor,
		sessions:       sessions,
		auditPublisher: auditPublisher,
		logger:         logger,
		seen:           make(map[id.IdentityID][]string),
	}
}

// Track resets the identity's inactivity timer on every authenticated
// request. Anonymous requests pass through untouched.
func (t *Tracker) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identityID := requestcontext.IdentityID(ctx)
		if !identityID.IsNil() {
			t.remember(identityID, requestcontext.SessionID(ctx))
			t.monitor.ResetTimer(identityID, func() { t.expire(identityID) })
		}
		next.ServeHTTP(w, r)
	})
}

// End clears the timer after an explicit logout.
func (t *Tracker) End(identityID id.IdentityID) {
	t.mu.Lock()
	delete(t.seen, identityID)
	t.mu.Unlock()
	t.monitor.ClearTimer(identityID)
}

func (t *Tracker) remember(identityID id.IdentityID, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(t.seen[identityID], sessionID) {
		t.seen[identityID] = append(t.seen[identityID], sessionID)
	}
}

func (t *Tracker) expire(identityID id.IdentityID) {
	t.mu.Lock()
	sessionIDs := t.seen[identityID]
	delete(t.seen, identityID)
	t.mu.Unlock()

	for _, sessionID := range sessionIDs {
		t.expireSession(identityID, sessionID)
	}
}

func (t *Tracker) expireSession(identityID id.IdentityID, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()

	result := audit.ResultSuccess
	if err := t.sessions.Terminate(ctx, identityID, sessionID); err != nil {
		result = audit.ResultFailure
		t.monitor.metrics.incLogoutErrors()
		t.logger.ErrorContext(ctx, "failed to end idle session",
			"identity_id", identityID,
			"session_id", sessionID,
			"error", err,
		)
	}
	t.logger.InfoContext(ctx, "session timed out",
		"identity_id", identityID,
		"session_id", sessionID,
		"idle_timeout", t.monitor.timeout.String(),
	)
	if t.auditPublisher == nil {
		return
	}
	err := t.auditPublisher.Emit(ctx, audit.Entry{
		IdentityID: identityID,
		Action:     audit.ActionSessionTimeout,
		Resource:   "session",
		ResourceID: sessionID,
		Details:    map[string]any{"idle_timeout_ms": t.monitor.timeout.Milliseconds()},
		Result:     result,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "failed to record audit entry",
			"action", audit.ActionSessionTimeout,
			"error", err,
		)
	}
}
