// Package dedup suppresses identical assignment operations repeated within
// a short isolation window, such as webhook redeliveries and client retries.
//
// It is not a lock: operations with a different target for the same
// conversation always go through and replace the recorded one.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"crm/internal/assignment/models"
	id "crm/pkg/domain"
	"crm/pkg/requestcontext"
)

const DefaultWindow = 2000 * time.Millisecond

// Store performs the check-and-record step atomically.
type Store interface {
	// CheckAndRecord reports whether op repeats the operation recorded for
	// its conversation less than window ago. When it does not, op replaces
	// the recorded one; when it does, the recorded one is left as is.
	CheckAndRecord(ctx context.Context, op models.Operation, window time.Duration) (bool, error)
	Clear(ctx context.Context, conversationID id.ConversationID) error
}

// Guard wraps a Store and never lets a store failure block an assignment.
type Guard struct {
	store   Store
	window  time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Guard)

func WithWindow(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.window = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		window: DefaultWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Window() time.Duration {
	return g.window
}

// ShouldBlock reports whether op must be suppressed. On store failure the
// operation is allowed.
func (g *Guard) ShouldBlock(ctx context.Context, op models.Operation) bool {
	if op.Timestamp.IsZero() {
		op.Timestamp = requestcontext.Now(ctx)
	}
	blocked, err := g.store.CheckAndRecord(ctx, op, g.window)
	if err != nil {
		g.metrics.incErrors()
		g.logger.WarnContext(ctx, "duplicate guard unavailable, allowing assignment",
			"conversation_id", op.ConversationID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return false
	}
	if blocked {
		g.metrics.incBlocked(op.Source)
		g.logger.InfoContext(ctx, "duplicate assignment suppressed",
			"conversation_id", op.ConversationID,
			"team_id", op.TeamID,
			"user_id", op.UserID,
			"source", op.Source,
			"request_id", requestcontext.RequestID(ctx),
		)
		return true
	}
	g.metrics.incAllowed(op.Source)
	return false
}

// ClearConversation forgets the recorded operation for conversationID.
func (g *Guard) ClearConversation(ctx context.Context, conversationID id.ConversationID) error {
	return g.store.Clear(ctx, conversationID)
}
