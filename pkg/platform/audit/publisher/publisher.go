// Package publisher is the best-effort audit sink. Emit never blocks the
// caller: in async mode entries go through a bounded buffer drained by one
// background goroutine, and entries that cannot be buffered or persisted
// are dropped and counted.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	"crm/pkg/requestcontext"
)

var (
	ErrBufferFull  = errors.New("audit buffer full")
	ErrCircuitOpen = errors.New("audit circuit open")
	ErrClosed      = errors.New("audit publisher closed")
)

const persistTimeout = 5 * time.Second

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	breaker *breaker

	bufferSize       int
	breakerThreshold int
	breakerCooldown  time.Duration
	now              func() time.Time

	mu      sync.RWMutex
	closed  bool
	entries chan audit.Entry
	done    chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n entries.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithCircuitBreaker opens the circuit after threshold consecutive store
// failures and keeps it open for cooldown.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(p *Publisher) {
		p.breakerThreshold = threshold
		p.breakerCooldown = cooldown
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.breaker = newBreaker(p.breakerThreshold, p.breakerCooldown, p.now)

	if p.bufferSize > 0 {
		p.entries = make(chan audit.Entry, p.bufferSize)
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records an entry. It fills in the id, timestamp and request id when
// the caller left them empty.
func (p *Publisher) Emit(ctx context.Context, entry audit.Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.ID == "" {
		entry.ID = audit.NewEntryID(entry.Timestamp)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}

	if p.entries == nil {
		return p.persist(ctx, entry)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.entries <- entry:
		return nil
	default:
		p.metrics.incBufferDropped()
		p.logger.WarnContext(ctx, "audit entry dropped: buffer full",
			"action", entry.Action,
			"request_id", entry.RequestID,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for entry := range p.entries {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		_ = p.persist(ctx, entry)
		cancel()
	}
}

func (p *Publisher) persist(ctx context.Context, entry audit.Entry) error {
	if !p.breaker.allow() {
		p.metrics.incBreakerDropped()
		return ErrCircuitOpen
	}
	if err := p.store.Append(ctx, entry); err != nil {
		p.metrics.incPersistFailures()
		if p.breaker.recordFailure() {
			p.metrics.setBreakerState(true)
			p.logger.ErrorContext(ctx, "audit circuit breaker opened", "error", err)
		}
		p.logger.WarnContext(ctx, "failed to persist audit entry",
			"action", entry.Action,
			"error", err,
			"request_id", entry.RequestID,
		)
		return err
	}
	p.breaker.recordSuccess()
	p.metrics.setBreakerState(false)
	p.metrics.incPersisted()
	return nil
}

// List returns the entries recorded for an identity.
func (p *Publisher) List(ctx context.Context, identityID id.IdentityID) ([]audit.Entry, error) {
	return p.store.ListByIdentity(ctx, identityID)
}

// Recent returns the most recent entries across all identities.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	return p.store.ListRecent(ctx, limit)
}

// CircuitOpen reports whether writes are currently being dropped.
func (p *Publisher) CircuitOpen() bool {
	return p.breaker.open()
}

// Close stops accepting entries and waits for the buffer to drain.
func (p *Publisher) Close() {
	if p.entries == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.entries)
	p.mu.Unlock()
	<-p.done
}
